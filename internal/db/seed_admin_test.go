package db

import (
	"context"
	"testing"

	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/geocoder89/bloghub/internal/repo/memory"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	hasher := security.NewHasher(4)
	cfg := config.Config{AdminEmail: "root@blog.local", AdminPassword: "s3cret", AdminName: "root"}

	created, err := EnsureAdminUser(ctx, users, hasher, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	u, err := users.FindOne(ctx, query.Eq(query.FieldEmail, "root@blog.local"))
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.Equal(t, "root", u.Name)
	assert.True(t, hasher.Compare("s3cret", u.PasswordHash))

	created, err = EnsureAdminUser(ctx, users, hasher, cfg)
	require.NoError(t, err)
	assert.False(t, created, "second run is a no-op")

	all, err := users.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsureAdminUser_NotConfigured(t *testing.T) {
	users := memory.NewUsersRepo()

	created, err := EnsureAdminUser(context.Background(), users, security.NewHasher(4), config.Config{})
	require.NoError(t, err)
	assert.False(t, created)
}
