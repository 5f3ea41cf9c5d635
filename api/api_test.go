package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/api"
	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/auth/jwt"
	"github.com/kbukum/forohub/auth/password"
	"github.com/kbukum/forohub/component"
	"github.com/kbukum/forohub/database"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/resilience"
	"github.com/kbukum/forohub/server"
	"github.com/kbukum/forohub/users"
)

const (
	adminEmail  = "admin@forohub.local"
	adminSecret = "admin-secret-123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	handler http.Handler
	repo    *users.Repository
	db      *database.DB
}

func newEnv(t *testing.T, opts ...func(*api.Deps)) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Driver:     database.DriverSQLite,
		DSN:        ":memory:",
		MaxRetries: 1,
		LogLevel:   "silent",
	}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.AutoMigrate(users.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := users.SeedProfiles(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	log := logger.NewNop()
	hasher := password.NewBcryptHasher(password.WithCost(4))
	repo := users.NewRepository(db)
	svc := users.NewService(repo, hasher, 8, log)
	if err := svc.EnsureAdmin(ctx, "Admin", adminEmail, adminSecret); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	codec, err := jwt.NewCodec(jwt.Config{Secret: "test-secret-test-secret-test-secret"})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	var cfg server.Config
	cfg.ApplyDefaults()
	srv := server.New(cfg, log)
	deps := api.Deps{
		Verifier: auth.NewVerifier(repo, hasher, log),
		Tokens:   codec,
		Store:    repo,
		Accounts: svc,
		Log:      log,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	api.Register(srv.GinEngine(), deps)
	srv.RegisterDefaultEndpoints("forohub", func(context.Context) []component.Health {
		return []component.Health{{Name: "database", Status: component.StatusHealthy}}
	})

	return &testEnv{handler: srv.Handler(), repo: repo, db: db}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, email, secret string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/login", "", map[string]string{"email": email, "contrasena": secret})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d %s", email, w.Code, w.Body.String())
	}
	var resp api.TokenResponse
	decode(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	return resp.Token
}

func (e *testEnv) register(t *testing.T, email string) users.Detail {
	t.Helper()
	w := e.do(t, http.MethodPost, "/usuarios", "", map[string]string{
		"nombre": "Ana", "email": email, "contrasena": "secreto-123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d %s", email, w.Code, w.Body.String())
	}
	var d users.Detail
	decode(t, w, &d)
	return d
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

func TestRegisterAndLogin(t *testing.T) {
	env := newEnv(t)
	d := env.register(t, "ana@x.com")
	if !d.Activo || len(d.Perfiles) != 1 || d.Perfiles[0] != users.RoleUser {
		t.Errorf("unexpected detail %+v", d)
	}

	token := env.login(t, "ana@x.com", "secreto-123")
	w := env.do(t, http.MethodGet, "/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", w.Code)
	}
	var me api.MeResponse
	decode(t, w, &me)
	if me.Login != "ana@x.com" || me.ID != d.ID {
		t.Errorf("unexpected identity %+v", me)
	}
}

func TestRegister_DetailOmitsHash(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodPost, "/usuarios", "", map[string]string{
		"nombre": "Ana", "email": "ana@x.com", "contrasena": "secreto-123",
	})
	if bytes.Contains(w.Body.Bytes(), []byte("$2a$")) || bytes.Contains(w.Body.Bytes(), []byte("contrasena")) {
		t.Errorf("detail must not carry the secret or its digest: %s", w.Body.String())
	}
	if w.Header().Get("Location") == "" {
		t.Error("expected Location header")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newEnv(t)
	env.register(t, "ana@x.com")
	w := env.do(t, http.MethodPost, "/usuarios", "", map[string]string{
		"nombre": "Otra", "email": "ana@x.com", "contrasena": "secreto-456",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "ALREADY_EXISTS" {
		t.Errorf("expected ALREADY_EXISTS, got %s", code)
	}
}

func TestRegister_Validation(t *testing.T) {
	env := newEnv(t)
	tests := []struct {
		name string
		body any
	}{
		{"bad email", map[string]string{"nombre": "A", "email": "nope", "contrasena": "secreto-123"}},
		{"missing name", map[string]string{"email": "a@x.com", "contrasena": "secreto-123"}},
		{"short secret", map[string]string{"nombre": "A", "email": "a@x.com", "contrasena": "short"}},
		{"secret over 72 bytes", map[string]string{"nombre": "A", "email": "a@x.com", "contrasena": strings.Repeat("ñ", 40)}},
		{"not json", "just a string"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/usuarios", "", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	env := newEnv(t)
	env.register(t, "ana@x.com")
	off := env.register(t, "off@x.com")
	if err := env.repo.SetEnabled(context.Background(), off.ID, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	attempts := map[string]map[string]string{
		"unknown login": {"email": "ghost@x.com", "contrasena": "secreto-123"},
		"wrong secret":  {"email": "ana@x.com", "contrasena": "wrong-secret"},
		"disabled":      {"email": "off@x.com", "contrasena": "secreto-123"},
	}
	var bodies []string
	for name, body := range attempts {
		w := env.do(t, http.MethodPost, "/login", "", body)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_CREDENTIALS" {
			t.Errorf("%s: expected INVALID_CREDENTIALS, got %s", name, code)
		}
		bodies = append(bodies, w.Body.String())
	}
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Errorf("credential failures must have identical bodies: %q vs %q", b, bodies[0])
		}
	}
}

func TestLogin_Validation(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ana@x.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	env := newEnv(t)
	d := env.register(t, "ana@x.com")
	userToken := env.login(t, "ana@x.com", "secreto-123")
	adminToken := env.login(t, adminEmail, adminSecret)
	blockPath := "/usuarios/" + strconv.FormatUint(d.ID, 10) + "/bloquear"
	unblockPath := "/usuarios/" + strconv.FormatUint(d.ID, 10) + "/desbloquear"

	if w := env.do(t, http.MethodPut, blockPath, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous block: expected 401, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPut, blockPath, userToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("user block: expected 403, got %d", w.Code)
	}

	w := env.do(t, http.MethodPut, blockPath, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin block: expected 200, got %d %s", w.Code, w.Body.String())
	}
	var blocked users.Detail
	decode(t, w, &blocked)
	if blocked.Activo {
		t.Error("expected account to be blocked")
	}

	if w := env.do(t, http.MethodPut, blockPath, adminToken, nil); w.Code != http.StatusConflict {
		t.Errorf("second block: expected 409, got %d", w.Code)
	}

	// A still-valid token of a blocked account no longer authenticates.
	if w := env.do(t, http.MethodGet, "/me", userToken, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("blocked account token: expected 401, got %d", w.Code)
	}

	if w := env.do(t, http.MethodPut, unblockPath, adminToken, nil); w.Code != http.StatusOK {
		t.Errorf("admin unblock: expected 200, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/me", userToken, nil); w.Code != http.StatusOK {
		t.Errorf("unblocked account token: expected 200, got %d", w.Code)
	}
}

func TestGetUser(t *testing.T) {
	env := newEnv(t)
	d := env.register(t, "ana@x.com")
	token := env.login(t, "ana@x.com", "secreto-123")

	if w := env.do(t, http.MethodGet, "/usuarios/"+strconv.FormatUint(d.ID, 10), "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/usuarios/"+strconv.FormatUint(d.ID, 10), token, nil); w.Code != http.StatusOK {
		t.Errorf("authenticated: expected 200, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/usuarios/9999", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/usuarios/abc", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", w.Code)
	}
}

func TestMalformedTokenOnPublicRoute(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodPost, "/usuarios", "not.a.jwt", map[string]string{
		"nombre": "Ana", "email": "ana@x.com", "contrasena": "secreto-123",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("expected a garbage token to be ignored on a public route, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/me", "not.a.jwt", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on protected route, got %d", w.Code)
	}
}

func TestDeletedIdentityToken(t *testing.T) {
	env := newEnv(t)
	d := env.register(t, "ana@x.com")
	token := env.login(t, "ana@x.com", "secreto-123")

	ctx := context.Background()
	if err := env.db.WithContext(ctx).Exec("DELETE FROM usuarios_perfiles WHERE usuario_id = ?", d.ID).Error; err != nil {
		t.Fatal(err)
	}
	if err := env.db.WithContext(ctx).Exec("DELETE FROM usuarios WHERE id = ?", d.ID).Error; err != nil {
		t.Fatal(err)
	}

	if w := env.do(t, http.MethodGet, "/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("deleted identity: expected 401, got %d", w.Code)
	}
}

func TestUnmatchedRouteRequiresAuthentication(t *testing.T) {
	env := newEnv(t)
	if w := env.do(t, http.MethodGet, "/topicos", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestHealthAndInfoArePublic(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", w.Code)
	}
	var health struct {
		Status string `json:"status"`
	}
	decode(t, w, &health)
	if health.Status != string(component.StatusHealthy) {
		t.Errorf("expected healthy, got %q", health.Status)
	}
	if w := env.do(t, http.MethodGet, "/info", "", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200 from /info, got %d", w.Code)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodGet, "/me", "", nil)
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on every response, including rejections")
	}
}

func TestLogin_Throttled(t *testing.T) {
	env := newEnv(t, func(d *api.Deps) {
		d.LoginLimiter = resilience.NewKeyedLimiter(resilience.RateLimitConfig{PerMinute: 1, Burst: 2})
	})
	creds := map[string]string{"email": adminEmail, "contrasena": "wrong-secret"}

	for i := 0; i < 2; i++ {
		if w := env.do(t, http.MethodPost, "/login", "", creds); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	// A forged X-Forwarded-For must not buy a fresh bucket.
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(map[string]string{"email": adminEmail, "contrasena": adminSecret})
	req := httptest.NewRequest(http.MethodPost, "/login", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "RATE_LIMITED" {
		t.Errorf("expected RATE_LIMITED, got %s", code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	if w := env.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("throttling must only apply to /login, got %d on /health", w.Code)
	}
}
