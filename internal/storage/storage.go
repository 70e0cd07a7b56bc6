// Package storage is the storage adapter: read/write access to the
// entities in internal/models plus a withTransaction primitive the
// booking engine uses for its serialized create/confirm/cancel critical
// sections. One Storage carries a method per entity, rather than one
// struct per repository, since the booking engine composes reads/writes
// across several entities inside a single transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/coreerr"
)

var serializableTx = &sql.TxOptions{Isolation: sql.LevelSerializable}

// Storage wraps a *gorm.DB and exposes entity-scoped methods. A Storage
// value returned from WithTransaction wraps the transaction's *gorm.DB;
// callers must use that value, not the outer one, for every op inside
// the transaction.
type Storage struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// DB exposes the underlying *gorm.DB for callers that need scopes the
// tenant interceptor builds on top of this package.
func (s *Storage) DB() *gorm.DB { return s.db }

// WithTransaction runs fn against a Storage bound to a single DB
// transaction at serializable isolation, sufficient to defeat the
// phantom-read of a newly inserted overlapping booking.
// Any error returned by fn rolls the transaction back; the commit path
// failure is always coreerr.Fatal.
func (s *Storage) WithTransaction(ctx context.Context, fn func(tx *Storage) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx})
	}, serializableTx)
	if err != nil {
		var coreErr *coreerr.Error
		if errors.As(err, &coreErr) {
			return coreErr
		}
		return coreerr.WrapFatal(err, "transaction failed")
	}
	return nil
}

func wrapNotFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return coreerr.NotFoundf(format, args...)
	}
	return coreerr.WrapFatal(err, fmt.Sprintf(format, args...))
}
