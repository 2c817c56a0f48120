package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/scardogs/justines-cargo-backoffice/internal/auth"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
	_ "github.com/scardogs/justines-cargo-backoffice/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) GetUser(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]auth.User, error) {
	if s.user == nil {
		return nil, nil
	}
	return []auth.User{*s.user}, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, input auth.CreateUserInput, hash string) (*auth.User, error) {
	return &auth.User{ID: 2, Email: input.Email, Name: input.Name, PasswordHash: hash, IsAdmin: input.IsAdmin, IsActive: true}, nil
}

func (s *stubRepo) UpdateUser(ctx context.Context, id int64, input auth.UpdateUserInput, hash *string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubRepo) DeleteUser(ctx context.Context, id int64) error {
	return shared.ErrNotFound
}

func newFixture(t *testing.T) (*auth.Handler, *shared.TokenStore, *stubRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := shared.NewTokenStore(client, time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("pakyaw123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{
		ID:           1,
		Email:        "admin@justines.local",
		Name:         "Admin",
		PasswordHash: string(hash),
		IsAdmin:      true,
		IsActive:     true,
	}}

	service := auth.NewService(repo, tokens)
	handler := auth.NewHandler(testLogger(), service)
	return handler, tokens, repo
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, data []byte, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v))
}

func TestLoginIssuesToken(t *testing.T) {
	handler, tokens, _ := newFixture(t)

	r := chi.NewRouter()
	handler.MountRoutes(r)

	body := `{"email":"admin@justines.local","password":"pakyaw123"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"token"`)

	// The issued token resolves through the store.
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec.Body.Bytes(), &resp)
	tok, err := tokens.Lookup(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, int64(1), tok.UserID)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	handler, _, _ := newFixture(t)

	r := chi.NewRouter()
	handler.MountRoutes(r)

	body := `{"email":"admin@justines.local","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireTokenBlocksWithoutBearer(t *testing.T) {
	handler, tokens, _ := newFixture(t)

	r := chi.NewRouter()
	r.Use(auth.Authenticate(tokens))
	r.Route("/control-panel", handler.MountControlPanel)

	req := httptest.NewRequest(http.MethodGet, "/control-panel/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := tokens.Issue(context.Background(), 1, "admin@justines.local", true)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/control-panel/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.ID)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
