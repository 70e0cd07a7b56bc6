package storage

import (
	"context"

	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
)

// CreateAPIKey inserts a key record. Callers hold the plaintext only in
// memory at this point; HashedKey is all that reaches storage.
func (s *Storage) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	if err := s.db.WithContext(ctx).Create(key).Error; err != nil {
		return coreerr.WrapFatal(err, "create api key failed")
	}
	return nil
}

// GetAPIKeyByHash looks up a key by its SHA-256 hash, the only form the
// core ever holds outside of Mint.
func (s *Storage) GetAPIKeyByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	var key models.APIKey
	if err := s.db.WithContext(ctx).First(&key, "hashed_key = ?", hash).Error; err != nil {
		return nil, wrapNotFound(err, "api key not recognized")
	}
	return &key, nil
}

// TouchAPIKeyLastUsed stamps LastUsedAt on successful verification.
func (s *Storage) TouchAPIKeyLastUsed(ctx context.Context, id string, c clock.Clock) error {
	now := c.Now()
	if err := s.db.WithContext(ctx).Model(&models.APIKey{}).Where("id = ?", id).
		Update("last_used_at", now).Error; err != nil {
		return coreerr.WrapFatal(err, "touch api key last used failed for %s", id)
	}
	return nil
}
