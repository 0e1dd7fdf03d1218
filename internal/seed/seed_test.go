package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appModels "github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/repositories/memory"
	"github.com/yigit/internflow/internal/config"
	"github.com/yigit/internflow/internal/pkg/auth"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	cfg := &config.Config{}
	cfg.Seed.AdminEmail = " Admin@Uni.edu "
	cfg.Seed.AdminPassword = "admin-pass"
	cfg.Seed.DemoPassword = "demo-pass"

	require.NoError(t, CreateDefaultData(ctx, store, cfg, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, store, cfg, zerolog.Nop()))

	admin, err := store.GetUserByEmail(ctx, "admin@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, "admin@uni.edu", admin.Email)
	assert.True(t, admin.HasRole(appModels.RoleAdmin))
	assert.True(t, auth.CheckPassword(admin.Password, "admin-pass"))

	for _, role := range []appModels.Role{
		appModels.RoleStudent,
		appModels.RoleFacultyAdvisor,
		appModels.RoleDepartmentCoordinator,
		appModels.RoleUniversityCoordinator,
	} {
		users, err := store.ListUsersByRole(ctx, role)
		require.NoError(t, err)
		assert.Len(t, users, 1, "one demo account for %s", role)
	}
}

func TestCreateDefaultDataWithoutAccounts(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, CreateDefaultData(context.Background(), store, &config.Config{}, zerolog.Nop()))

	users, err := store.ListUsersByRole(context.Background(), appModels.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, users)
}
