package apikeys

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"gorm.io/gorm"
)

const (
	// Prefix marks taskr API keys so they are recognisable in config files and logs
	Prefix = "tsk_"
	// secretBytes of randomness, hex encoded after Prefix
	secretBytes = 32
	// hintLength is how much of the key is kept in clear for identification
	hintLength = len(Prefix) + 8
)

var (
	ErrInvalidKey = errors.New("invalid api key")
	ErrNotFound   = errors.New("api key not found")
)

// Service issues, lists, revokes and resolves API keys.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newRawKey() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return Prefix + hex.EncodeToString(buf), nil
}

// Issue creates a key for userID. The raw key is returned once and only
// its hash is stored.
func (s *Service) Issue(ctx context.Context, userID uint, description string) (string, *models.APIKey, error) {
	raw, err := newRawKey()
	if err != nil {
		return "", nil, err
	}
	key := &models.APIKey{
		UserID:      userID,
		KeyHash:     hashKey(raw),
		KeyPrefix:   raw[:hintLength],
		Description: strings.TrimSpace(description),
	}
	if err := s.db.WithContext(ctx).Create(key).Error; err != nil {
		return "", nil, fmt.Errorf("create api key: %w", err)
	}
	return raw, key, nil
}

// List returns userID's live keys, newest first.
func (s *Service) List(ctx context.Context, userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// Revoke soft-deletes one of userID's keys.
func (s *Service) Revoke(ctx context.Context, userID, keyID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", keyID, userID).Delete(&models.APIKey{})
	if res.Error != nil {
		return fmt.Errorf("revoke api key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Resolve maps a raw key to its record and owner and stamps last_used_at.
// Revoked keys and keys of deleted users are ErrInvalidKey.
func (s *Service) Resolve(ctx context.Context, raw string) (*models.APIKey, error) {
	if !strings.HasPrefix(raw, Prefix) {
		return nil, ErrInvalidKey
	}

	db := s.db.WithContext(ctx)
	var key models.APIKey
	err := db.Preload("User").Where("key_hash = ?", hashKey(raw)).First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, fmt.Errorf("load api key: %w", err)
	}
	// Preload skips soft-deleted users, leaving a zero User
	if key.User.ID == 0 {
		return nil, ErrInvalidKey
	}

	now := time.Now()
	if err := db.Model(&models.APIKey{}).Where("id = ?", key.ID).Update("last_used_at", now).Error; err != nil {
		return &key, fmt.Errorf("record api key use: %w", err)
	}
	key.LastUsedAt = &now
	return &key, nil
}
