// models/user.go
package models

import (
	"time"
)

type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	// Nil for accounts created through the player link flow; such accounts
	// cannot log in with email/password until one is set.
	Password  *string `json:"-"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 🔗 At most one player is linked at a time (Player.UserID)
	Players []Player `json:"players,omitempty" gorm:"foreignKey:UserID"`
}
