package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/bloghub/internal/access"
	"github.com/geocoder89/bloghub/internal/apperr"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type PostStore interface {
	FindOne(ctx context.Context, filter query.Filter) (post.Post, error)
	Find(ctx context.Context, filter query.Filter) ([]post.Post, error)
	Create(ctx context.Context, np post.NewPost) (post.Post, error)
	SetHidden(ctx context.Context, filter query.Filter, hidden bool) (int64, error)
	Delete(ctx context.Context, filter query.Filter) (int64, error)
}

type AuthorLookup interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type PostsHandler struct {
	posts   PostStore
	authors AuthorLookup
}

func NewPostsHandler(posts PostStore, authors AuthorLookup) *PostsHandler {
	return &PostsHandler{posts: posts, authors: authors}
}

func (h *PostsHandler) List(ctx *gin.Context) {
	ac, ok := authFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	posts, err := h.posts.Find(cctx, access.VisiblePosts(ac))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": posts,
		"count": len(posts),
	})
}

// Create stores a post. Restricted callers always become the author,
// whatever authorId the body carried.
func (h *PostsHandler) Create(ctx *gin.Context) {
	var req post.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ac, ok := authFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	authorID := access.PostAuthor(ac, req.AuthorID)

	if authorID != ac.User.ID {
		_, err := h.authors.GetByID(cctx, authorID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				RespondAppError(ctx, apperr.ErrAuthorNotFound)
				return
			}
			RespondAppError(ctx, err)
			return
		}
	}

	existing, err := h.posts.Find(cctx, query.Or(
		query.Eq(query.FieldTitle, req.Title),
		query.Eq(query.FieldContent, req.Content),
	))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	// title is reported before content
	if lo.ContainsBy(existing, func(p post.Post) bool { return p.Title == req.Title }) {
		RespondAppError(ctx, apperr.ErrTitleAlreadyExist)
		return
	}
	if len(existing) > 0 {
		RespondAppError(ctx, apperr.ErrContentAlreadyExist)
		return
	}

	_, err = h.posts.Create(cctx, post.NewPost{
		Title:    req.Title,
		Content:  req.Content,
		Hidden:   *req.Hidden,
		AuthorID: authorID,
	})

	if err != nil {
		RespondAppError(ctx, postStoreError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *PostsHandler) Delete(ctx *gin.Context) {
	ac, ok := authFrom(ctx)
	if !ok {
		return
	}

	id, ok := postIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	filter := access.OwnedPost(ac, id)

	n, err := h.posts.Delete(cctx, filter)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	if n == 0 {
		logNoPost(cctx, "delete", filter)
		RespondAppError(ctx, apperr.ErrPostNotFound)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *PostsHandler) ToggleVisibility(ctx *gin.Context) {
	ac, ok := authFrom(ctx)
	if !ok {
		return
	}

	id, ok := postIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	filter := access.OwnedPost(ac, id)

	p, err := h.posts.FindOne(cctx, filter)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			logNoPost(cctx, "toggle_visibility", filter)
		}
		RespondAppError(ctx, postStoreError(err))
		return
	}

	n, err := h.posts.SetHidden(cctx, filter, !p.Hidden)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	// deleted between the read and the write
	if n == 0 {
		RespondAppError(ctx, apperr.ErrPostNotFound)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// logNoPost records the filter that matched nothing, which is also what a request
// for someone else's post looks like.
func logNoPost(ctx context.Context, op string, filter query.Filter) {
	slog.DebugContext(ctx, "post not found", "op", op, "filter", query.String(filter))
}

// postIDParam treats an id that is not a positive integer like an id no
// post has.
func postIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondAppError(ctx, apperr.ErrPostNotFound)
		return 0, false
	}

	return id, true
}

func postStoreError(err error) error {
	switch {
	case errors.Is(err, post.ErrNotFound):
		return apperr.ErrPostNotFound
	case errors.Is(err, post.ErrTitleTaken):
		return apperr.ErrTitleAlreadyExist
	case errors.Is(err, post.ErrContentTaken):
		return apperr.ErrContentAlreadyExist
	case errors.Is(err, post.ErrAuthorMissing):
		return apperr.ErrAuthorNotFound
	}

	return err
}
