// Package apikey mints and verifies `bk_live_<64 hex>` API keys.
// Hashing is plain SHA-256, not argon2: argon2's expensive, memory-hard
// KDF exists to slow down offline cracking of low-entropy human
// passwords, while an API key is already 256 bits of crypto/rand
// output, so a fast deterministic digest is the right tool here.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
)

const (
	prefix     = "bk_live_"
	secretSize = 32 // 32 random bytes -> 64 hex characters
)

// Minted is the one-time plaintext returned from Mint. The caller must
// display or deliver Plaintext immediately; it is never recoverable
// afterwards.
type Minted struct {
	Record    *models.APIKey
	Plaintext string
}

// Store is the persistence surface apikey needs from internal/storage.
type Store interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	GetAPIKeyByHash(ctx context.Context, hash string) (*models.APIKey, error)
	TouchAPIKeyLastUsed(ctx context.Context, id string, c clock.Clock) error
}

// Manager mints and verifies API keys. Mint takes the organization per
// call; Verify accepts a key of any organization and reports its owner.
type Manager struct {
	store Store
	clock clock.Clock
}

func New(store Store, c clock.Clock) *Manager {
	return &Manager{store: store, clock: c}
}

// Mint generates a new key for organizationID and persists its hash.
func (m *Manager) Mint(ctx context.Context, organizationID, name string) (*Minted, error) {
	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, coreerr.WrapFatal(err, "api key secret generation failed")
	}
	plaintext := prefix + hex.EncodeToString(secret)

	record := &models.APIKey{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           name,
		Prefix:         plaintext[:12],
		HashedKey:      hashKey(plaintext),
	}
	if err := m.store.CreateAPIKey(ctx, record); err != nil {
		return nil, err
	}
	return &Minted{Record: record, Plaintext: plaintext}, nil
}

// Verify looks up the key by the hash of plaintext and returns its
// record if it is known and not revoked, stamping LastUsedAt.
func (m *Manager) Verify(ctx context.Context, plaintext string) (*models.APIKey, error) {
	record, err := m.store.GetAPIKeyByHash(ctx, hashKey(plaintext))
	if err != nil {
		return nil, err
	}
	if !record.Active() {
		return nil, coreerr.Forbiddenf("api key %s has been revoked", record.Prefix)
	}
	if err := m.store.TouchAPIKeyLastUsed(ctx, record.ID, m.clock); err != nil {
		return nil, err
	}
	return record, nil
}

// hashKey hex-encodes the SHA-256 digest of an API key's plaintext.
func hashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
