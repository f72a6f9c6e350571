package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, role, created_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)

	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.FindOne(ctx, query.Eq(query.FieldID, id))
}

func (r *UsersRepo) FindOne(ctx context.Context, filter query.Filter) (user.User, error) {
	var u user.User

	where, args := query.Where(filter, 1)

	err := r.observe("users.find_one", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users`+where+` ORDER BY id LIMIT 1`,
			args...,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Find(ctx context.Context, filter query.Filter) ([]user.User, error) {
	var out []user.User

	where, args := query.Where(filter, 1)

	err := r.observe("users.find", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users`+where+` ORDER BY id`,
			args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]user.User, 0)
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	var u user.User

	err := r.observe("users.create", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
			nu.Name, nu.Email, nu.PasswordHash, nu.Role,
		))
		return err
	})

	if err != nil {
		return user.User{}, translateConstraint(err)
	}

	return u, nil
}
