// services/auth.go
package services

import (
	"errors"
	"strings"

	"vampyr-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailOrUsernameTaken = errors.New("email or username already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
)

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("email = ? OR username = ?", email, in.Username).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailOrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	user := models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Username: in.Username,
		Password: &hash,
		FullName: in.FullName,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterWithPlayer creates an account and directly links an existing,
// unlinked player in the same transaction — the mobile-app signup path for
// players who already have a game profile.
func (s *AuthService) RegisterWithPlayer(in RegisterInput, playerNickname string) (*models.User, *models.Player, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user models.User
	var player models.Player
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("email = ? OR username = ?", email, in.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailOrUsernameTaken
		}

		if err := tx.Where("nickname = ?", playerNickname).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		if player.IsLinked() {
			return ErrPlayerAlreadyLinked
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
		if err != nil {
			return err
		}
		hash := string(hashed)

		user = models.User{
			ID:       uuid.NewString(),
			Email:    email,
			Username: in.Username,
			Password: &hash,
			FullName: in.FullName,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if err := tx.Model(&player).Update("user_id", user.ID).Error; err != nil {
			return err
		}
		player.UserID = &user.ID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, &player, nil
}

// Login authenticates by email + password. Accounts created through the link
// flow have no password and cannot log in this way until one is set.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
