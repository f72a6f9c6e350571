package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/access"
	"github.com/geocoder89/bloghub/internal/apperr"
	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type UserStore interface {
	FindOne(ctx context.Context, filter query.Filter) (user.User, error)
	Find(ctx context.Context, filter query.Filter) ([]user.User, error)
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, ac auth.AuthContext) error
}

type UsersHandler struct {
	users   UserStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	revoker TokenRevoker
	prom    *observability.Prom
}

func NewUsersHandler(users UserStore, hasher PasswordHasher, tokens TokenIssuer, revoker TokenRevoker, prom *observability.Prom) *UsersHandler {
	return &UsersHandler{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoker: revoker,
		prom:    prom,
	}
}

// Register always creates a blogger; only admins can hand out other roles.
func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.createUser(cctx, req.Name, req.Email, req.Password, user.RoleBlogger)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.FindOne(cctx, query.Eq(query.FieldEmail, req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondAppError(ctx, apperr.ErrEmailOrPasswordIncorrect)
			return
		}
		RespondAppError(ctx, err)
		return
	}

	if !h.hasher.Compare(req.Password, found.PasswordHash) {
		RespondAppError(ctx, apperr.ErrEmailOrPasswordIncorrect)
		return
	}

	token, err := h.tokens.Issue(found.ID)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.prom.RecordTokenIssued()

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

// List shows admins every user with ids; everyone else gets names and
// emails of non-admin users only.
func (h *UsersHandler) List(ctx *gin.Context) {
	ac, ok := authFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.users.Find(cctx, access.VisibleUsers(ac))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	var items any
	if ac.Scope == auth.ScopeFull {
		items = lo.Map(users, func(u user.User, _ int) user.Summary { return u.Summary() })
	} else {
		items = lo.Map(users, func(u user.User, _ int) user.Contact { return u.Contact() })
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(users),
	})
}

// Create is the admin-only variant of Register: the role may be chosen and
// the confirmation is optional.
func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role := req.Role
	if role == "" {
		role = user.RoleBlogger
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.createUser(cctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	ac, ok := authFrom(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, ac.User.Profile())
}

// Logout revokes the token the request was made with. Other tokens of the
// same user stay valid.
func (h *UsersHandler) Logout(ctx *gin.Context) {
	ac, ok := authFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.revoker.Revoke(cctx, ac); err != nil {
		RespondAppError(ctx, err)
		return
	}

	h.prom.RecordTokenRevoked()

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) createUser(ctx context.Context, name, email, password string, role user.Role) error {
	existing, err := h.users.Find(ctx, query.Or(
		query.Eq(query.FieldName, name),
		query.Eq(query.FieldEmail, email),
	))
	if err != nil {
		return err
	}

	// name is reported before email
	if lo.ContainsBy(existing, func(u user.User) bool { return u.Name == name }) {
		return apperr.ErrNameAlreadyUsed
	}
	if len(existing) > 0 {
		return apperr.ErrEmailAlreadyUsed
	}

	hash, err := h.hasher.Hash(password)
	if err != nil {
		return err
	}

	_, err = h.users.Create(ctx, user.NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})

	switch {
	case errors.Is(err, user.ErrNameTaken):
		return apperr.ErrNameAlreadyUsed
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.ErrEmailAlreadyUsed
	}

	return err
}

func authFrom(ctx *gin.Context) (auth.AuthContext, bool) {
	ac, ok := auth.FromContext(ctx.Request.Context())
	if !ok {
		RespondAppError(ctx, apperr.ErrAuthMissing)
		return auth.AuthContext{}, false
	}

	return ac, true
}
