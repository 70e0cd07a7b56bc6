// Package tenant is the Tenant Scope Interceptor: a thin
// wrapper that makes tenant-bounded reads and writes organization-scoped
// without each call site re-deriving the scope by hand. Grounded on the
// auth-service middleware's style of stashing request-scoped identity
// (auth.go's c.Set("user_id", ...)) but realized as an adapter over the
// storage interface, not dynamic query rewriting.
package tenant

import (
	"context"

	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/reqctx"
)

// ScopedModels is the compile-time enumerated set of tenant-bounded
// entity types. BookingAuditLog is deliberately excluded
// — it is scoped transitively via its parent booking. Resource, Webhook,
// and NotificationTemplate are owned by external collaborators
// and have no persisted model in this module; api_keys is persisted
// here but is looked up by key hash, not by organization, and is not
// listed. Nothing reads this set at run time: Scope filters whatever
// query it is applied to.
var ScopedModels = map[string]bool{
	"bookings":    true,
	"event_types": true,
}

// OrganizationID returns the organization scope carried by ctx, if any.
func OrganizationID(ctx context.Context) (string, bool) {
	rc, ok := reqctx.From(ctx)
	if !ok {
		return "", false
	}
	return rc.OrganizationID()
}

// Scope builds a gorm scope function adding organization_id = ctx's
// organizationId to a query against a tenant-bounded table. When the
// context carries no organizationId, it is a no-op — background jobs
// that operate system-wide must pass their own explicit scope.
func Scope(ctx context.Context) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		orgID, ok := OrganizationID(ctx)
		if !ok {
			return db
		}
		return db.Where("organization_id = ?", orgID)
	}
}

// Guard returns coreerr.Forbidden if ctx carries an organizationId that
// does not match resourceOrgID. Call after loading a tenant-bounded
// entity by a key that isn't itself organization-scoped (a booking ID,
// say) to catch a cross-tenant read that would otherwise escape
// interceptor scoping.
func Guard(ctx context.Context, resourceOrgID string) error {
	orgID, ok := OrganizationID(ctx)
	if !ok {
		return nil
	}
	if orgID != resourceOrgID {
		return coreerr.Forbiddenf("resource belongs to a different organization")
	}
	return nil
}

// RequireOrganizationID returns the context's organizationId or a
// Forbidden error if none is set, for write paths that must never
// silently fall through to an unscoped write (e.g. minting an API key).
func RequireOrganizationID(ctx context.Context) (string, error) {
	orgID, ok := OrganizationID(ctx)
	if !ok {
		return "", coreerr.Forbiddenf("no organization in request context")
	}
	return orgID, nil
}
