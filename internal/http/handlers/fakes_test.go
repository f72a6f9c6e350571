package handlers_test

import (
	"bytes"
	"context"
	"net/http/httptest"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/query"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserStore struct {
	findOneFn func(ctx context.Context, filter query.Filter) (user.User, error)
	findFn    func(ctx context.Context, filter query.Filter) ([]user.User, error)
	createFn  func(ctx context.Context, nu user.NewUser) (user.User, error)
	getFn     func(ctx context.Context, id int64) (user.User, error)
}

func (f *fakeUserStore) FindOne(ctx context.Context, filter query.Filter) (user.User, error) {
	if f.findOneFn != nil {
		return f.findOneFn(ctx, filter)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) Find(ctx context.Context, filter query.Filter) ([]user.User, error) {
	if f.findFn != nil {
		return f.findFn(ctx, filter)
	}
	return []user.User{}, nil
}

func (f *fakeUserStore) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, nu)
	}
	return user.User{ID: 1, Name: nu.Name, Email: nu.Email, Role: nu.Role}, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

type fakePostStore struct {
	findOneFn   func(ctx context.Context, filter query.Filter) (post.Post, error)
	findFn      func(ctx context.Context, filter query.Filter) ([]post.Post, error)
	createFn    func(ctx context.Context, np post.NewPost) (post.Post, error)
	setHiddenFn func(ctx context.Context, filter query.Filter, hidden bool) (int64, error)
	deleteFn    func(ctx context.Context, filter query.Filter) (int64, error)
}

func (f *fakePostStore) FindOne(ctx context.Context, filter query.Filter) (post.Post, error) {
	if f.findOneFn != nil {
		return f.findOneFn(ctx, filter)
	}
	return post.Post{}, post.ErrNotFound
}

func (f *fakePostStore) Find(ctx context.Context, filter query.Filter) ([]post.Post, error) {
	if f.findFn != nil {
		return f.findFn(ctx, filter)
	}
	return []post.Post{}, nil
}

func (f *fakePostStore) Create(ctx context.Context, np post.NewPost) (post.Post, error) {
	if f.createFn != nil {
		return f.createFn(ctx, np)
	}
	return post.Post{ID: 1, Title: np.Title, Content: np.Content, Hidden: np.Hidden, AuthorID: np.AuthorID}, nil
}

func (f *fakePostStore) SetHidden(ctx context.Context, filter query.Filter, hidden bool) (int64, error) {
	if f.setHiddenFn != nil {
		return f.setHiddenFn(ctx, filter, hidden)
	}
	return 1, nil
}

func (f *fakePostStore) Delete(ctx context.Context, filter query.Filter) (int64, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, filter)
	}
	return 1, nil
}

// plainHasher keeps handler tests independent of bcrypt.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Compare(plain, hash string) bool { return hash == "hashed:"+plain }

type fakeTokens struct {
	issued []int64
	err    error
}

func (f *fakeTokens) Issue(userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, userID)
	return "token-for-user", nil
}

type fakeRevoker struct {
	revoked []auth.AuthContext
}

func (f *fakeRevoker) Revoke(_ context.Context, ac auth.AuthContext) error {
	f.revoked = append(f.revoked, ac)
	return nil
}

// withIdentity stands in for the auth and scope middlewares.
func withIdentity(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, err := auth.ResolveScope(auth.AuthContext{Token: "t", TokenID: "jti", User: u})
		if err != nil {
			panic(err)
		}
		c.Request = c.Request.WithContext(auth.WithAuth(c.Request.Context(), ac))
		c.Next()
	}
}

// small helper function which returns the gin engine to mount one handler per test
func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

func serve(r *gin.Engine, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

var (
	adminUser   = user.User{ID: 1, Name: "admin", Email: "admin@x.com", Role: user.RoleAdmin}
	bloggerUser = user.User{ID: 2, Name: "a", Email: "a@x.com", Role: user.RoleBlogger, PasswordHash: "hashed:p"}
)
