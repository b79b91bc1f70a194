package services

import (
	"errors"
	"strings"

	"pc-inventory/internal/config"
	"pc-inventory/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	cfg    *config.Config
	tokens *TokenService
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg, tokens: NewTokenService(cfg)}
}

// Tokens exposes the token store backing this service.
func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.Security.BcryptCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// NewUser describes an identity to provision.
type NewUser struct {
	Username    string      `json:"username" binding:"required"`
	Password    string      `json:"password" binding:"required"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	IsSuperuser bool        `json:"is_superuser"`
	Role        models.Role `json:"role"`
	Position    string      `json:"position"`
	Department  string      `json:"department"`
}

// CreateUser provisions a user, its profile and its first token in one
// transaction. Nothing is left behind if any step fails.
func (s *AuthService) CreateUser(in NewUser) (*models.User, *models.Token, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, nil, validationErrorf("username is required")
	}
	if in.Password == "" {
		return nil, nil, validationErrorf("password is required")
	}
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if !in.Role.Valid() {
		return nil, nil, validationErrorf("invalid role: %s", in.Role)
	}

	hashedPassword, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hashedPassword,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsSuperuser:  in.IsSuperuser,
		IsActive:     true,
	}

	var token *models.Token
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		profile := &models.Profile{
			UserID:     user.ID,
			Role:       in.Role,
			Position:   in.Position,
			Department: in.Department,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile

		token, err = s.tokens.issue(tx, user)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// Authenticate verifies credentials and returns the user. Inactive users
// fail the same way as unknown ones.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := models.DB.Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.VerifyPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// Login authenticates and issues a token that supersedes any earlier one.
func (s *AuthService) Login(username, password string) (*models.User, *models.Token, error) {
	user, err := s.Authenticate(username, password)
	if err != nil {
		return nil, nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// Logout revokes every token of user.
func (s *AuthService) Logout(user *models.User) (int64, error) {
	deleted, err := s.tokens.Revoke(user)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, ErrTokenNotFound
	}
	return deleted, nil
}

// CreateDefaultUser creates the default superuser if no users exist
func (s *AuthService) CreateDefaultUser() error {
	var count int64
	if err := models.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		_, _, err := s.CreateUser(NewUser{
			Username:    s.cfg.DefaultUser.Username,
			Password:    s.cfg.DefaultUser.Password,
			Email:       s.cfg.DefaultUser.Email,
			IsSuperuser: true,
			Role:        models.RoleAdmin,
		})
		return err
	}

	return nil
}
