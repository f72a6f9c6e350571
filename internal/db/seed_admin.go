package db

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/geocoder89/bloghub/internal/security"
)

// AdminStore is the slice of a users repository that seeding needs; both the
// Postgres and the in-memory repos satisfy it.
type AdminStore interface {
	FindOne(ctx context.Context, filter query.Filter) (user.User, error)
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
}

// EnsureAdminUser creates the configured administrator when no user with
// that email exists yet. It reports whether a user was created.
func EnsureAdminUser(ctx context.Context, users AdminStore, hasher *security.Hasher, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	// check if the user exists
	_, err := users.FindOne(ctx, query.Eq(query.FieldEmail, cfg.AdminEmail))

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	name := cfg.AdminName
	if name == "" {
		name = "admin"
	}

	_, err = users.Create(ctx, user.NewUser{
		Name:         name,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
	})

	if err != nil {
		return false, err
	}

	return true, nil
}
