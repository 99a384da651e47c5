// services/users.go
package services

import (
	"errors"
	"strings"

	"vampyr-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailInUse    = errors.New("email already in use")
	ErrUsernameInUse = errors.New("username already in use")
	ErrWrongPassword = errors.New("current password incorrect")
	ErrNoPasswordSet = errors.New("no password set for this account")
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) GetByID(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// UpdateProfile applies non-empty fields, checking email/username uniqueness
// against other accounts.
func (s *UserService) UpdateProfile(userID string, in ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}

	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		var other models.User
		err := s.DB.Where("email = ? AND id <> ?", email, userID).First(&other).Error
		if err == nil {
			return nil, ErrEmailInUse
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["email"] = email
	}

	if in.Username != "" {
		var other models.User
		err := s.DB.Where("username = ? AND id <> ?", in.Username, userID).First(&other).Error
		if err == nil {
			return nil, ErrUsernameInUse
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["username"] = in.Username
	}

	if in.FullName != "" {
		updates["full_name"] = in.FullName
	}
	if in.AvatarURL != "" {
		updates["avatar_url"] = in.AvatarURL
	}

	if len(updates) > 0 {
		res := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}
	return s.GetByID(userID)
}

// UpdatePassword verifies the current password before setting a new hash.
func (s *UserService) UpdatePassword(userID, currentPassword, newPassword string) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}

	if user.Password == nil {
		return ErrNoPasswordSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), 10)
	if err != nil {
		return err
	}
	return s.DB.Model(user).Update("password", string(hashed)).Error
}

// DeleteAccount removes the user. A linked player is unlinked first so its
// game progress survives account deletion.
func (s *UserService) DeleteAccount(userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Player{}).
			Where("user_id = ?", userID).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

type UserWithPlayer struct {
	models.User
	Player *models.Player `json:"player"`
}

type UserListStats struct {
	TotalUsers         int `json:"total_users"`
	UsersWithPlayer    int `json:"users_with_player"`
	UsersWithoutPlayer int `json:"users_without_player"`
}

// ListWithPlayers returns all users with their linked player, newest first.
// Admin/debugging endpoint.
func (s *UserService) ListWithPlayers() ([]UserWithPlayer, UserListStats, error) {
	var users []models.User
	if err := s.DB.Preload("Players").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, UserListStats{}, err
	}

	out := make([]UserWithPlayer, len(users))
	stats := UserListStats{TotalUsers: len(users)}
	for i, u := range users {
		entry := UserWithPlayer{User: u}
		if len(u.Players) > 0 {
			entry.Player = &u.Players[0]
			stats.UsersWithPlayer++
		}
		entry.User.Players = nil
		out[i] = entry
	}
	stats.UsersWithoutPlayer = stats.TotalUsers - stats.UsersWithPlayer
	return out, stats, nil
}
