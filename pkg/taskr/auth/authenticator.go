package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator exchanges credentials for a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// Service authenticates users stored in the database
type Service struct {
	db     *gorm.DB
	issuer *Issuer
}

// NewService creates a database-backed Authenticator
func NewService(db *gorm.DB, issuer *Issuer) *Service {
	return &Service{db: db, issuer: issuer}
}

// Authenticate verifies the email/password pair and issues a token
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.verify(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.issuer.GenerateToken(user.ID, user.Email, string(user.SystemRole))
}

// verify returns the user owning the credentials
func (s *Service) verify(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
