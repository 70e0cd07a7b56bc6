package storage

import (
	"context"

	"github.com/slotwise/scheduling-core/internal/models"
)

// GetOrganizationByID fetches an organization by ID.
func (s *Storage) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "organization %s not found", id)
	}
	return &org, nil
}

// GetOrganizationBySlug fetches an organization by its unique slug.
func (s *Storage) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, "slug = ?", slug).Error; err != nil {
		return nil, wrapNotFound(err, "organization %q not found", slug)
	}
	return &org, nil
}

// GetUserByID fetches a host by ID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "user %s not found", id)
	}
	return &user, nil
}

// GetUsersByIDs fetches hosts in bulk, preserving no particular order.
func (s *Storage) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrapNotFound(err, "users lookup failed")
	}
	return users, nil
}
