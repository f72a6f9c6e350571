package postgres

import (
	"errors"

	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names declared by db.EnsureSchema.
const (
	constraintUsersName    = "users_name_key"
	constraintUsersEmail   = "users_email_key"
	constraintPostsTitle   = "posts_title_key"
	constraintPostsContent = "posts_content_key"
	constraintPostsAuthor  = "posts_author_id_fkey"
)

// translateConstraint maps constraint violations onto the domain errors the
// handlers already understand. Anything else is returned unchanged.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintUsersName:
			return user.ErrNameTaken
		case constraintUsersEmail:
			return user.ErrEmailTaken
		case constraintPostsTitle:
			return post.ErrTitleTaken
		case constraintPostsContent:
			return post.ErrContentTaken
		}
	case codeForeignKeyViolation:
		if pgErr.ConstraintName == constraintPostsAuthor {
			return post.ErrAuthorMissing
		}
	}

	return err
}
