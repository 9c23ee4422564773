package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"travel-planner/internal/domain"
	"travel-planner/internal/email"
	"travel-planner/internal/overpass"
	"travel-planner/internal/repository"
	"travel-planner/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
	err    error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return domain.User{}, repository.ErrDuplicateUsername
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *memUserRepo) Touch(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = at
	m.users[id] = u
	return nil
}

func (m *memUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.users[user.ID]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	for _, u := range m.users {
		if u.Email == user.Email && u.ID != user.ID {
			return domain.User{}, repository.ErrDuplicateEmail
		}
	}
	current.Name = user.Name
	current.Email = user.Email
	current.Age = user.Age
	if user.PasswordHash != "" {
		current.PasswordHash = user.PasswordHash
	}
	m.users[user.ID] = current
	return current, nil
}

func (m *memUserRepo) delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

type memResetRepo struct {
	mu     sync.Mutex
	users  *memUserRepo
	tokens map[string]domain.PasswordResetToken
}

func (m *memResetRepo) Replace(_ context.Context, token domain.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.tokens {
		if t.UserID == token.UserID {
			t.Used = true
			m.tokens[k] = t
		}
	}
	m.tokens[token.Token] = token
	return nil
}

func (m *memResetRepo) FindValid(_ context.Context, token string, now time.Time) (domain.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || t.Used || !now.Before(t.ExpiresAt) {
		return domain.PasswordResetToken{}, repository.ErrNotFound
	}
	return t, nil
}

func (m *memResetRepo) Consume(ctx context.Context, token, hash string, now time.Time) (int64, error) {
	t, err := m.FindValid(ctx, token, now)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	t.Used = true
	m.tokens[token] = t
	m.mu.Unlock()

	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	u := m.users.users[t.UserID]
	u.PasswordHash = hash
	m.users.users[t.UserID] = u
	return t.UserID, nil
}

type captureSender struct {
	mu   sync.Mutex
	last email.PasswordResetMessage
	n    int
}

func (s *captureSender) SendPasswordReset(_ context.Context, msg email.PasswordResetMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = msg
	s.n++
	return nil
}

type stubOverpass struct {
	resp *overpass.Response
	err  error
}

func (s *stubOverpass) Query(context.Context, string) (*overpass.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type testServer struct {
	router  *gin.Engine
	users   *memUserRepo
	sender  *captureSender
	overp   *stubOverpass
	healthy map[string]error
}

const testCookieName = "session"

type serverOption func(*serverOptions)

type serverOptions struct {
	catalogPath string
	origins     []string
	limiter     service.RateLimiter
	sessions    func(service.SessionStore) service.SessionStore
}

func withCatalog(path string) serverOption {
	return func(o *serverOptions) { o.catalogPath = path }
}

func withOrigins(origins ...string) serverOption {
	return func(o *serverOptions) { o.origins = origins }
}

// withSessionStore envuelve el store en memoria del servidor de pruebas.
func withSessionStore(wrap func(service.SessionStore) service.SessionStore) serverOption {
	return func(o *serverOptions) { o.sessions = wrap }
}

func withLoginLimiter(l service.RateLimiter) serverOption {
	return func(o *serverOptions) { o.limiter = l }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	o := serverOptions{catalogPath: filepath.Join(t.TempDir(), "missing.json")}
	for _, opt := range opts {
		opt(&o)
	}

	logger := zap.NewNop()
	users := newMemUserRepo()
	resets := &memResetRepo{users: users, tokens: make(map[string]domain.PasswordResetToken)}
	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	var sessions service.SessionStore = service.NewMemorySessionStore()
	if o.sessions != nil {
		sessions = o.sessions(sessions)
	}
	sender := &captureSender{}
	overp := &stubOverpass{resp: &overpass.Response{}}

	userServ := service.NewUserService(logger, users, hasher)
	authServ := service.NewAuthService(logger, users, hasher, sessions, service.NewSessionTokenSigner("test-secret"), o.limiter, service.AuthConfig{SessionTTL: time.Hour})
	resetServ := service.NewPasswordResetService(logger, users, resets, hasher, sessions, sender, nil, service.PasswordResetConfig{
		BaseURL:  "http://localhost:8080",
		TokenTTL: time.Hour,
	})
	spotServ := service.NewSpotService(logger, overp, nil, 0)

	ts := &testServer{users: users, sender: sender, overp: overp, healthy: map[string]error{}}
	health := NewHealthHandler(logger, map[string]HealthCheck{
		"database": func(context.Context) error { return ts.healthy["database"] },
	})

	ts.router = NewRouter(
		logger,
		RouterConfig{AllowedOrigins: o.origins, CookieName: testCookieName},
		authServ,
		NewUserHandler(logger, userServ, authServ, CookieConfig{Name: testCookieName}),
		NewPasswordHandler(logger, resetServ),
		NewSpotHandler(logger, spotServ, service.NewSpotCatalog(o.catalogPath)),
		health,
	)
	return ts
}

type apiResponse struct {
	Code    int
	Body    map[string]any
	Raw     string
	Cookies []*http.Cookie
	Header  http.Header
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) apiResponse {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	res := apiResponse{Code: w.Code, Raw: w.Body.String(), Cookies: w.Result().Cookies(), Header: w.Header()}
	if w.Body.Len() > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err == nil {
			res.Body = parsed
		}
	}
	return res
}

func (r apiResponse) cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (ts *testServer) register(t *testing.T, username, emailAddr, password string) int64 {
	t.Helper()
	res := ts.do(t, http.MethodPost, "/api/register", map[string]any{
		"username": username,
		"email":    emailAddr,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Raw)
	user := res.Body["user"].(map[string]any)
	return int64(user["id"].(float64))
}

func (ts *testServer) login(t *testing.T, emailAddr, password string) *http.Cookie {
	t.Helper()
	res := ts.do(t, http.MethodPost, "/api/login", map[string]any{"email": emailAddr, "password": password})
	require.Equal(t, http.StatusOK, res.Code, res.Raw)
	c := res.cookie(testCookieName)
	require.NotNil(t, c)
	return c
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

var errBoom = errors.New("boom")
