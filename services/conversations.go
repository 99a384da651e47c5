// services/conversations.go
package services

import (
	"errors"
	"strings"
	"time"

	"vampyr-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidRole          = errors.New("role must be user or assistant")
	ErrEmptyTitle           = errors.New("title must not be empty")
)

type ConversationService struct {
	DB *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{DB: db}
}

func (s *ConversationService) Create(userID, title string) (*models.Conversation, error) {
	if strings.TrimSpace(title) == "" {
		title = "New conversation"
	}
	conv := models.Conversation{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	}
	if err := s.DB.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

type ConversationSummary struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	UserID       string          `json:"user_id"`
	MessageCount int64           `json:"message_count"`
	LastMessage  *models.Message `json:"last_message"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// List returns the user's conversations, most recently active first, each with
// its message count and latest message.
func (s *ConversationService) List(userID string) ([]ConversationSummary, error) {
	var convs []models.Conversation
	if err := s.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error; err != nil {
		return nil, err
	}

	out := make([]ConversationSummary, len(convs))
	for i, conv := range convs {
		summary := ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			UserID:    conv.UserID,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		}
		if err := s.DB.Model(&models.Message{}).
			Where("conversation_id = ?", conv.ID).
			Count(&summary.MessageCount).Error; err != nil {
			return nil, err
		}
		var last models.Message
		if err := s.DB.Where("conversation_id = ?", conv.ID).
			Order("created_at DESC, id DESC").
			First(&last).Error; err == nil {
			summary.LastMessage = &last
		}
		out[i] = summary
	}
	return out, nil
}

// Get returns one conversation with all its messages, oldest first. Scoped to
// the owning user.
func (s *ConversationService) Get(userID, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.Where("id = ? AND user_id = ?", conversationID, userID).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (s *ConversationService) Rename(userID, conversationID, title string) (*models.Conversation, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	res := s.DB.Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Update("title", title)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConversationNotFound
	}

	var conv models.Conversation
	if err := s.DB.Where("id = ?", conversationID).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// Delete removes a conversation and its messages.
func (s *ConversationService) Delete(userID, conversationID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", conversationID, userID).
			Delete(&models.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return tx.Where("conversation_id = ?", conversationID).
			Delete(&models.Message{}).Error
	})
}

// AddMessage appends a message and bumps the conversation's activity timestamp.
func (s *ConversationService) AddMessage(userID, conversationID, role, content string) (*models.Message, error) {
	if role != models.RoleUser && role != models.RoleAssistant {
		return nil, ErrInvalidRole
	}

	var msg models.Message
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Where("id = ? AND user_id = ?", conversationID, userID).
			First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}

		msg = models.Message{
			ConversationID: conversationID,
			Role:           role,
			Content:        content,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&conv).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
