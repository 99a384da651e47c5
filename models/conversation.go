// models/conversation.go
package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index;not null"`
	Title  string `json:"title" gorm:"default:'New conversation'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

type Message struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	ConversationID string `json:"conversation_id" gorm:"index;not null"`
	Role           string `json:"role" gorm:"not null"` // user | assistant
	Content        string `json:"content" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}
