package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsersHandler(store *fakeUserStore) (*handlers.UsersHandler, *fakeTokens, *fakeRevoker) {
	tokens := &fakeTokens{}
	revoker := &fakeRevoker{}
	return handlers.NewUsersHandler(store, plainHasher{}, tokens, revoker, nil), tokens, revoker
}

func decodeError(t *testing.T, body []byte) (code, message string) {
	t.Helper()

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp), string(body))

	return resp.Error.Code, resp.Error.Message
}

func TestRegisterHandler(t *testing.T) {
	const validBody = `{"name":"a","email":"a@x.com","password":"p","passwordConfirmation":"p"}`

	tests := []struct {
		name       string
		body       string
		storeSetUp func(*fakeUserStore)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       validBody,
			wantStatus: http.StatusNoContent,
		},
		{
			name: "name checked before email",
			body: validBody,
			storeSetUp: func(f *fakeUserStore) {
				f.findFn = func(context.Context, query.Filter) ([]user.User, error) {
					return []user.User{
						{ID: 5, Name: "other", Email: "a@x.com"},
						{ID: 6, Name: "a", Email: "z@x.com"},
					}, nil
				}
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NAME_ALREADY_USED",
		},
		{
			name: "email taken",
			body: validBody,
			storeSetUp: func(f *fakeUserStore) {
				f.findFn = func(context.Context, query.Filter) ([]user.User, error) {
					return []user.User{{ID: 5, Name: "other", Email: "a@x.com"}}, nil
				}
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMAIL_ALREADY_USED",
		},
		{
			name: "lost race caught by the store",
			body: validBody,
			storeSetUp: func(f *fakeUserStore) {
				f.createFn = func(context.Context, user.NewUser) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMAIL_ALREADY_USED",
		},
		{
			name: "storage failure is masked",
			body: validBody,
			storeSetUp: func(f *fakeUserStore) {
				f.findFn = func(context.Context, query.Filter) ([]user.User, error) {
					return nil, errors.New("dial tcp 10.0.0.1:5432: connection refused")
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}
			if tt.storeSetUp != nil {
				tt.storeSetUp(store)
			}
			h, _, _ := newUsersHandler(store)

			r := setupRouter(http.MethodPost, "/users/register", h.Register)
			w := serve(r, http.MethodPost, "/users/register", tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				code, _ := decodeError(t, w.Body.Bytes())
				assert.Equal(t, tt.wantCode, code)
			}
			assert.NotContains(t, w.Body.String(), "10.0.0.1")
		})
	}
}

func TestRegisterHandler_AlwaysCreatesBlogger(t *testing.T) {
	var created user.NewUser
	store := &fakeUserStore{
		createFn: func(_ context.Context, nu user.NewUser) (user.User, error) {
			created = nu
			return user.User{ID: 9}, nil
		},
	}
	h, _, _ := newUsersHandler(store)

	r := setupRouter(http.MethodPost, "/users/register", h.Register)
	w := serve(r, http.MethodPost, "/users/register",
		`{"name":"a","email":"a@x.com","password":"p","passwordConfirmation":"p","role":"ADMIN"}`)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, user.RoleBlogger, created.Role)
	assert.Equal(t, "hashed:p", created.PasswordHash)
}

func TestLoginHandler(t *testing.T) {
	store := &fakeUserStore{
		findOneFn: func(_ context.Context, filter query.Filter) (user.User, error) {
			if filter.Match(bloggerUser) {
				return bloggerUser, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"success", `{"email":"a@x.com","password":"p"}`, http.StatusOK, ""},
		{"wrong password", `{"email":"a@x.com","password":"x"}`, http.StatusUnauthorized, "EMAIL_OR_PASSWORD_INCORRECT"},
		{"unknown email", `{"email":"b@x.com","password":"p"}`, http.StatusUnauthorized, "EMAIL_OR_PASSWORD_INCORRECT"},
		{"missing password", `{"email":"a@x.com"}`, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, tokens, _ := newUsersHandler(store)

			r := setupRouter(http.MethodPost, "/users/login", h.Login)
			w := serve(r, http.MethodPost, "/users/login", tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantCode == "" {
				var resp struct {
					Token string `json:"token"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "token-for-user", resp.Token)
				assert.Equal(t, []int64{bloggerUser.ID}, tokens.issued)
				return
			}

			code, _ := decodeError(t, w.Body.Bytes())
			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, tokens.issued)
		})
	}
}

func TestListUsersHandler_ProjectionByScope(t *testing.T) {
	store := &fakeUserStore{
		findFn: func(_ context.Context, filter query.Filter) ([]user.User, error) {
			out := []user.User{}
			for _, u := range []user.User{adminUser, bloggerUser} {
				if filter.Match(u) {
					out = append(out, u)
				}
			}
			return out, nil
		},
	}
	h, _, _ := newUsersHandler(store)

	r := setupRouter(http.MethodGet, "/users", withIdentity(adminUser), h.List)
	w := serve(r, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"count":2,"items":[{"id":1,"name":"admin","email":"admin@x.com"},{"id":2,"name":"a","email":"a@x.com"}]}`,
		w.Body.String())

	r = setupRouter(http.MethodGet, "/users", withIdentity(bloggerUser), h.List)
	w = serve(r, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1,"items":[{"name":"a","email":"a@x.com"}]}`, w.Body.String())
	assert.False(t, strings.Contains(w.Body.String(), "hashed"), "password hash leaked")
}

func TestCreateUserHandler_RoleDefaultsToBlogger(t *testing.T) {
	var created []user.NewUser
	store := &fakeUserStore{
		createFn: func(_ context.Context, nu user.NewUser) (user.User, error) {
			created = append(created, nu)
			return user.User{ID: int64(len(created))}, nil
		},
	}
	h, _, _ := newUsersHandler(store)
	r := setupRouter(http.MethodPost, "/users", withIdentity(adminUser), h.Create)

	w := serve(r, http.MethodPost, "/users", `{"name":"b","email":"b@x.com","password":"p"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = serve(r, http.MethodPost, "/users", `{"name":"c","email":"c@x.com","password":"p","role":"ADMIN"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	require.Len(t, created, 2)
	assert.Equal(t, user.RoleBlogger, created[0].Role)
	assert.Equal(t, user.RoleAdmin, created[1].Role)
}

func TestMeAndLogoutHandlers(t *testing.T) {
	h, _, revoker := newUsersHandler(&fakeUserStore{})

	r := setupRouter(http.MethodGet, "/users/me", withIdentity(bloggerUser), h.Me)
	w := serve(r, http.MethodGet, "/users/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"a","email":"a@x.com","role":"BLOGGER"}`, w.Body.String())

	r = setupRouter(http.MethodPost, "/users/logout", withIdentity(bloggerUser), h.Logout)
	w = serve(r, http.MethodPost, "/users/logout", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, revoker.revoked, 1)
	assert.Equal(t, "jti", revoker.revoked[0].TokenID)
}

func TestHandlersWithoutIdentity(t *testing.T) {
	h, _, _ := newUsersHandler(&fakeUserStore{})

	r := setupRouter(http.MethodGet, "/users/me", h.Me)
	w := serve(r, http.MethodGet, "/users/me", "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	code, _ := decodeError(t, w.Body.Bytes())
	assert.Equal(t, "AUTH_MISSING", code)
}

func mustDecode(t *testing.T, body []byte, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, out), string(body))
}
