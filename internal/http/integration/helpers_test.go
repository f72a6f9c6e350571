package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/db"
	apphttp "github.com/geocoder89/bloghub/internal/http"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/repo/memory"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
)

func testConfig() config.Config {
	return config.Config{
		Env:                    "test",
		Store:                  config.StoreMemory,
		JWTSecret:              "test-secret-key",
		JWTTTLMinutes:          60,
		BcryptCost:             4,
		AdminEmail:             adminEmail,
		AdminPassword:          adminPassword,
		AdminName:              "Test Admin",
		AuthRateLimitPerMinute: 1000,
		MaxBodyBytes:           1 << 20,
	}
}

type testServer struct {
	router http.Handler
	tokens *auth.Manager
}

// storeBackend builds the user and post repositories a test server runs on.
type storeBackend struct {
	name  string
	setup func(t *testing.T) (apphttp.UserRepo, handlers.PostStore, db.AdminStore, map[string]handlers.Pinger)
}

func memoryBackend() storeBackend {
	return storeBackend{
		name: "memory",
		setup: func(t *testing.T) (apphttp.UserRepo, handlers.PostStore, db.AdminStore, map[string]handlers.Pinger) {
			users := memory.NewUsersRepo()
			return users, memory.NewPostsRepo(users), users, nil
		},
	}
}

// postgresBackend runs against TEST_DB_DSN and truncates both tables first.
func postgresBackend() storeBackend {
	return storeBackend{
		name: "postgres",
		setup: func(t *testing.T) (apphttp.UserRepo, handlers.PostStore, db.AdminStore, map[string]handlers.Pinger) {
			t.Helper()

			dsn := os.Getenv("TEST_DB_DSN")
			if dsn == "" {
				t.Skip("TEST_DB_DSN not set")
			}

			ctx := context.Background()

			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				t.Fatalf("Failed to create pgx pool: %v", err)
			}
			t.Cleanup(pool.Close)

			if err := db.EnsureSchema(ctx, pool); err != nil {
				t.Fatalf("failed to ensure schema: %v", err)
			}

			_, err = pool.Exec(ctx, `TRUNCATE posts, users RESTART IDENTITY CASCADE`)
			if err != nil {
				t.Fatalf("failed to truncate tables: %v", err)
			}

			users := postgres.NewUsersRepo(pool, nil)
			return users, postgres.NewPostsRepo(pool, nil), users, map[string]handlers.Pinger{"postgres": pool}
		},
	}
}

func backends() []storeBackend {
	return []storeBackend{memoryBackend(), postgresBackend()}
}

func newTestServer(t *testing.T, backend storeBackend, cfg config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users, posts, seed, ready := backend.setup(t)

	hasher := security.NewHasher(cfg.BcryptCost)
	if _, err := db.EnsureAdminUser(context.Background(), seed, hasher, cfg); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	tokens := auth.NewManager(cfg.SigningSecret(), cfg.TokenTTL())
	authenticator := auth.NewAuthenticator(tokens, users, auth.NewMemoryRevocations(), time.Hour)

	reg := prometheus.NewRegistry()

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var limiter middlewares.Limiter
	if cfg.AuthRateLimitPerMinute > 0 {
		limiter = middlewares.NewRateLimiter(cfg.AuthRateLimitPerMinute, apphttp.AuthWindow)
	}

	router := apphttp.NewRouter(logger, cfg, apphttp.Deps{
		Users:         users,
		Posts:         posts,
		Authenticator: authenticator,
		Tokens:        tokens,
		Hasher:        hasher,
		AuthLimiter:   limiter,
		Prom:          observability.NewProm(reg),
		Metrics:       reg,
		Health:        handlers.NewHealthHandler(ready),
	})

	return &testServer{router: router, tokens: tokens}
}

func (s *testServer) do(method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *testServer) register(t *testing.T, name, email, password string) {
	t.Helper()

	body := `{"name":"` + name + `","email":"` + email + `","password":"` + password + `","passwordConfirmation":"` + password + `"}`
	w := s.do(http.MethodPost, "/api/v1/users/register", body, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("register %s: got %d, body=%s", name, w.Code, w.Body.String())
	}
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	w := s.do(http.MethodPost, "/api/v1/users/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: got %d, body=%s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	mustReadJSON(t, w, &resp)

	return resp.Token
}

// blogger registers and logs in a blogger named name.
func (s *testServer) blogger(t *testing.T, name string) string {
	t.Helper()

	s.register(t, name, name+"@x.com", "p-"+name)
	return s.login(t, name+"@x.com", "p-"+name)
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	return s.login(t, adminEmail, adminPassword)
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, status, w.Body.String())
	}

	var resp errorResponse
	mustReadJSON(t, w, &resp)

	if resp.Error.Code != code {
		t.Fatalf("got code %q, want %q", resp.Error.Code, code)
	}
}

type postView struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Hidden   bool   `json:"isHidden"`
	AuthorID int64  `json:"authorId"`
}

func (s *testServer) listPosts(t *testing.T, token string) []postView {
	t.Helper()

	w := s.do(http.MethodGet, "/api/v1/posts", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("list posts: got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []postView `json:"items"`
		Count int        `json:"count"`
	}
	mustReadJSON(t, w, &resp)

	if resp.Count != len(resp.Items) {
		t.Fatalf("count %d does not match %d items", resp.Count, len(resp.Items))
	}

	return resp.Items
}

func findPost(posts []postView, title string) (postView, bool) {
	for _, p := range posts {
		if p.Title == title {
			return p, true
		}
	}
	return postView{}, false
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}
