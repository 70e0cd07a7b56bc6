package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/reqctx"
	"github.com/slotwise/scheduling-core/internal/tenant"
)

type scopedRow struct {
	ID             string `gorm:"primaryKey"`
	OrganizationID string
}

func withOrg(t *testing.T, orgID string, fn func(ctx context.Context)) {
	t.Helper()
	rc := reqctx.New("req-1", "127.0.0.1", "test-agent")
	if orgID != "" {
		rc.SetOrganization(orgID)
	}
	err := reqctx.Run(context.Background(), rc, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
	require.NoError(t, err)
}

func TestGuardAllowsMatchingOrganization(t *testing.T) {
	withOrg(t, "org-1", func(ctx context.Context) {
		assert.NoError(t, tenant.Guard(ctx, "org-1"))
	})
}

func TestGuardRejectsCrossTenantAccess(t *testing.T) {
	withOrg(t, "org-1", func(ctx context.Context) {
		err := tenant.Guard(ctx, "org-2")
		require.Error(t, err)
		assert.Equal(t, coreerr.Forbidden, coreerr.KindOf(err))
	})
}

func TestGuardIsNoopWithoutScopedContext(t *testing.T) {
	assert.NoError(t, tenant.Guard(context.Background(), "org-1"), "background jobs with no request context must not be blocked")
}

func TestRequireOrganizationIDReturnsScopeWhenPresent(t *testing.T) {
	withOrg(t, "org-7", func(ctx context.Context) {
		orgID, err := tenant.RequireOrganizationID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "org-7", orgID)
	})
}

func TestRequireOrganizationIDFailsClosedWithoutScope(t *testing.T) {
	_, err := tenant.RequireOrganizationID(context.Background())
	require.Error(t, err)
	assert.Equal(t, coreerr.Forbidden, coreerr.KindOf(err))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&scopedRow{}))
	require.NoError(t, db.Create(&scopedRow{ID: "row-1", OrganizationID: "org-1"}).Error)
	require.NoError(t, db.Create(&scopedRow{ID: "row-2", OrganizationID: "org-2"}).Error)
	return db
}

func TestScopeFiltersByContextOrganization(t *testing.T) {
	db := openTestDB(t)

	withOrg(t, "org-1", func(ctx context.Context) {
		var rows []scopedRow
		require.NoError(t, db.Scopes(tenant.Scope(ctx)).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, "row-1", rows[0].ID)
	})
}

func TestScopeIsNoopWithoutOrganization(t *testing.T) {
	db := openTestDB(t)

	var rows []scopedRow
	require.NoError(t, db.Scopes(tenant.Scope(context.Background())).Find(&rows).Error)
	assert.Len(t, rows, 2, "background jobs without a request context see every row")
}
