package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `id, title, content, hidden, author_id, created_at, updated_at`

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{pool: pool, prom: prom}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Hidden,
		&p.AuthorID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func (r *PostsRepo) FindOne(ctx context.Context, filter query.Filter) (post.Post, error) {
	var p post.Post

	where, args := query.Where(filter, 1)

	err := r.observe("posts.find_one", func() error {
		var err error
		p, err = scanPost(r.pool.QueryRow(ctx,
			`SELECT `+postColumns+` FROM posts`+where+` ORDER BY id LIMIT 1`,
			args...,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) Find(ctx context.Context, filter query.Filter) ([]post.Post, error) {
	var out []post.Post

	where, args := query.Where(filter, 1)

	err := r.observe("posts.find", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+postColumns+` FROM posts`+where+` ORDER BY id`,
			args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]post.Post, 0)
		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PostsRepo) Create(ctx context.Context, np post.NewPost) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.create", func() error {
		var err error
		p, err = scanPost(r.pool.QueryRow(ctx,
			`INSERT INTO posts (title, content, hidden, author_id)
			VALUES ($1, $2, $3, $4)
			RETURNING `+postColumns,
			np.Title, np.Content, np.Hidden, np.AuthorID,
		))
		return err
	})

	if err != nil {
		return post.Post{}, translateConstraint(err)
	}

	return p, nil
}

// SetHidden updates every post matching filter and reports how many rows
// changed. The filter's placeholders start after the two SET arguments.
func (r *PostsRepo) SetHidden(ctx context.Context, filter query.Filter, hidden bool) (int64, error) {
	var affected int64

	where, args := query.Where(filter, 2)

	err := r.observe("posts.set_hidden", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE posts SET hidden = $1, updated_at = NOW()`+where,
			append([]any{hidden}, args...)...,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}

func (r *PostsRepo) Delete(ctx context.Context, filter query.Filter) (int64, error) {
	var affected int64

	where, args := query.Where(filter, 1)

	err := r.observe("posts.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM posts`+where, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}
