// services/leads.go
package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"vampyr-backend/models"

	"gorm.io/gorm"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrLeadInvalid       = errors.New("name, email and message are required")
	ErrLeadInvalidEmail  = errors.New("invalid email format")
	ErrLeadInvalidStatus = errors.New("invalid lead status")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type LeadService struct {
	DB *gorm.DB
}

func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{DB: db}
}

type LeadInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// Create captures a landing-page contact request.
func (s *LeadService) Create(in LeadInput) (*models.Lead, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	message := strings.TrimSpace(in.Message)

	if name == "" || email == "" || message == "" {
		return nil, ErrLeadInvalid
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrLeadInvalidEmail
	}

	lead := models.Lead{
		Name:    name,
		Email:   email,
		Message: message,
		Source:  in.Source,
		Status:  models.LeadStatusNew,
	}
	if lead.Source == "" {
		lead.Source = models.LeadSourceLanding
	}
	if subject := strings.TrimSpace(in.Subject); subject != "" {
		lead.Subject = &subject
	}

	if err := s.DB.Create(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

type LeadPage struct {
	Leads      []models.Lead `json:"leads"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int64         `json:"total_pages"`
}

// List returns leads newest first, optionally filtered by status and source.
func (s *LeadService) List(status, source string, page, limit int) (*LeadPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := s.DB.Model(&models.Lead{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if source != "" {
		query = query.Where("source = ?", source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&leads).Error; err != nil {
		return nil, err
	}

	return &LeadPage{
		Leads:      leads,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}

func (s *LeadService) GetByID(id uint) (*models.Lead, error) {
	var lead models.Lead
	if err := s.DB.Where("id = ?", id).First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (s *LeadService) UpdateStatus(id uint, status string) (*models.Lead, error) {
	if !models.ValidLeadStatus(status) {
		return nil, ErrLeadInvalidStatus
	}

	res := s.DB.Model(&models.Lead{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrLeadNotFound
	}
	return s.GetByID(id)
}

func (s *LeadService) Delete(id uint) error {
	res := s.DB.Where("id = ?", id).Delete(&models.Lead{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

type LeadStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	BySource       map[string]int64 `json:"by_source"`
	RecentLeads    int64            `json:"recent_leads"` // created in the last 7 days
	ConversionRate float64          `json:"conversion_rate"`
}

func (s *LeadService) GetStats() (*LeadStats, error) {
	stats := LeadStats{
		ByStatus: map[string]int64{},
		BySource: map[string]int64{},
	}

	if err := s.DB.Model(&models.Lead{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	for _, status := range []string{
		models.LeadStatusNew, models.LeadStatusContacted,
		models.LeadStatusConverted, models.LeadStatusArchived,
	} {
		var count int64
		if err := s.DB.Model(&models.Lead{}).Where("status = ?", status).Count(&count).Error; err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}

	var sources []struct {
		Source string
		Count  int64
	}
	if err := s.DB.Model(&models.Lead{}).
		Select("source, COUNT(*) AS count").
		Group("source").
		Scan(&sources).Error; err != nil {
		return nil, err
	}
	for _, row := range sources {
		stats.BySource[row.Source] = row.Count
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	if err := s.DB.Model(&models.Lead{}).
		Where("created_at >= ?", sevenDaysAgo).
		Count(&stats.RecentLeads).Error; err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.ConversionRate = float64(stats.ByStatus[models.LeadStatusConverted]) / float64(stats.Total) * 100
	}
	return &stats, nil
}

// ArchiveStale marks leads still "new" after the given age as archived.
// Returns how many rows changed. Run hourly by the scheduler.
func (s *LeadService) ArchiveStale(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.DB.Model(&models.Lead{}).
		Where("status = ? AND created_at < ?", models.LeadStatusNew, cutoff).
		Update("status", models.LeadStatusArchived)
	return res.RowsAffected, res.Error
}
