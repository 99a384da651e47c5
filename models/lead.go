// models/lead.go
package models

import (
	"time"
)

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusArchived  = "archived"
)

const LeadSourceLanding = "landing"

// Lead is a contact request captured from the landing page.
type Lead struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"not null"`
	Email   string  `json:"email" gorm:"index;not null"` // stored trimmed + lowercased
	Subject *string `json:"subject,omitempty"`
	Message string  `json:"message" gorm:"not null"`
	Source  string  `json:"source" gorm:"default:'landing'"`
	Status  string  `json:"status" gorm:"index;default:'new'"` // new | contacted | converted | archived

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusConverted, LeadStatusArchived:
		return true
	}
	return false
}
