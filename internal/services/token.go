package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"pc-inventory/internal/config"
	"pc-inventory/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenService issues and checks bearer tokens. Keys are signed JWTs, but
// the tokens table decides whether a key is live.
type TokenService struct {
	cfg *config.Config
	now func() time.Time
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

// Issue replaces every token of user with a fresh one.
func (s *TokenService) Issue(user *models.User) (*models.Token, error) {
	return s.issue(models.DB, user)
}

// issue runs inside db, which may already be a transaction. The delete and
// the insert commit together, and the unique index on user_id rejects a
// concurrent second insert.
func (s *TokenService) issue(db *gorm.DB, user *models.User) (*models.Token, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.Token.TTL())

	key, err := s.sign(user, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	token := &models.Token{
		Key:       key,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

func (s *TokenService) sign(user *models.User, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    s.cfg.Token.Issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Token.Secret))
}

// Validate resolves key to its owner. Expired tokens are reported but left
// in place; the next login replaces them.
func (s *TokenService) Validate(key string) (*models.User, error) {
	if key == "" {
		return nil, ErrUnauthenticated
	}

	// Claims are not validated here: the stored expires_at is authoritative
	// and may differ from the signed exp after an administrative change.
	_, err := jwt.Parse(key, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Token.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrInvalidToken
	}

	var token models.Token
	if err := models.DB.Preload("User.Profile").Where(&models.Token{Key: key}).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if token.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	if !token.User.IsActive {
		return nil, ErrUserInactive
	}

	return &token.User, nil
}

// Revoke deletes every token of user and returns how many there were.
func (s *TokenService) Revoke(user *models.User) (int64, error) {
	result := models.DB.Where("user_id = ?", user.ID).Delete(&models.Token{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
