package post

import (
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/query"
)

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Hidden    bool      `json:"isHidden"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Post) FieldValue(f query.Field) (any, bool) {
	switch f {
	case query.FieldID:
		return p.ID, true
	case query.FieldTitle:
		return p.Title, true
	case query.FieldContent:
		return p.Content, true
	case query.FieldHidden:
		return p.Hidden, true
	case query.FieldAuthorID:
		return p.AuthorID, true
	default:
		return nil, false
	}
}

var (
	ErrNotFound      = errors.New("post not found")
	ErrTitleTaken    = errors.New("post title already exists")
	ErrContentTaken  = errors.New("post content already exists")
	ErrAuthorMissing = errors.New("post author does not exist")
)

type NewPost struct {
	Title    string
	Content  string
	Hidden   bool
	AuthorID int64
}

// Hidden is a pointer so that an explicit false is not mistaken for a
// missing field.
type CreateRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Hidden   *bool  `json:"isHidden" binding:"required"`
	AuthorID int64  `json:"authorId" binding:"required"`
}
