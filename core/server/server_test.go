package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-coordinator/core/config"
	"go-coordinator/core/constants"
	"go-coordinator/core/token/tokentest"
	"go-coordinator/core/utils"
)

func memoryConfig(t *testing.T, modules ...string) *config.Config {
	t.Helper()
	private, _ := tokentest.Keys(t)
	hash, err := utils.HashPassword("s3cret-password")
	if err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		App:    config.AppConfig{Name: "coordinator", Modules: modules},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Log:    config.LogConfig{Level: "error", Format: "text"},
		JWT: config.JWTConfig{
			PublicKey:      tokentest.PublicPEM(t, private),
			PrivateKey:     tokentest.PrivatePEM(t, private),
			Issuer:         tokentest.Issuer,
			AllowedIssuers: []string{tokentest.Issuer},
			Lifespan:       time.Hour,
		},
		Auth: config.AuthConfig{
			Admins:             []config.AdminSeed{{Username: "admin", PasswordHash: hash}},
			MaxLoginAttempts:   5,
			LoginBlockDuration: time.Minute,
		},
		Checkin: config.CheckinConfig{SubscriberBuffer: 8, PingInterval: time.Minute},
	}
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func call(t *testing.T, app *App, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set(constants.HeaderAuthToken, tok)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	app := newApp(t, memoryConfig(t, constants.ModuleAuth))

	rec := call(t, app, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, app, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "coordinator_") {
		t.Fatalf("metrics = %d, missing coordinator series", rec.Code)
	}
}

func TestHealthReportsDegradedDependency(t *testing.T) {
	app := newApp(t, memoryConfig(t, constants.ModuleAuth))

	rec := call(t, app, http.MethodGet, "/health", "", nil)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Checks["cache"] != "up" {
		t.Fatalf("checks = %v, want cache up", body.Checks)
	}

	app.checks["database"] = func(context.Context) error { return errors.New("connection refused") }
	rec = call(t, app, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	body.Checks = nil
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Status != "degraded" || body.Checks["database"] != "down" || body.Checks["cache"] != "up" {
		t.Fatalf("body = %+v", body)
	}
}

func TestOnlyRequestedModulesAreMounted(t *testing.T) {
	app := newApp(t, memoryConfig(t, constants.ModuleAuth))

	if rec := call(t, app, http.MethodGet, "/events", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET /events = %d, want 404 with event module unmounted", rec.Code)
	}
}

// Memory mode wires every module to shared stores, so a registration made
// through the event service is visible to check-ins straight away.
func TestMemoryModeEndToEnd(t *testing.T) {
	app := newApp(t, memoryConfig(t,
		constants.ModuleAuth, constants.ModuleEvent, constants.ModuleCheckin, constants.ModuleParticipant))

	rec := call(t, app, http.MethodPost, "/login", "", map[string]string{"username": "admin", "password": "s3cret-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &login)

	if rec := call(t, app, http.MethodPost, "/events/administer", login.Token, map[string]string{"title": "Launch party"}); rec.Code != http.StatusCreated {
		t.Fatalf("create event = %d %s", rec.Code, rec.Body.String())
	}

	participant := map[string]string{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"}
	if rec := call(t, app, http.MethodPost, "/participants", "", participant); rec.Code != http.StatusOK {
		t.Fatalf("register participant = %d %s", rec.Code, rec.Body.String())
	}

	if rec := call(t, app, http.MethodPost, "/events/register/1", "", map[string]string{"email": "eve@example.com"}); rec.Code != http.StatusForbidden {
		t.Fatalf("unknown participant registration = %d, want 403", rec.Code)
	}
	if rec := call(t, app, http.MethodPost, "/events/register/1", "", map[string]string{"email": "ada@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("registration = %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, app, http.MethodGet, "/checkin/1", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkins = %d %s", rec.Code, rec.Body.String())
	}
	var checkins []struct {
		Email  string `json:"email"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &checkins); err != nil {
		t.Fatal(err)
	}
	if len(checkins) != 1 || checkins[0].Email != "ada@example.com" || checkins[0].Status != "UNKNOWN" {
		t.Fatalf("checkins = %+v", checkins)
	}
}

func TestArticleModuleMounted(t *testing.T) {
	app := newApp(t, memoryConfig(t, constants.ModuleAuth, constants.ModuleArticle))

	rec := call(t, app, http.MethodPost, "/login", "", map[string]string{"username": "admin", "password": "s3cret-password"})
	var login struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &login)

	article := map[string]string{"title": "Opening", "content": "<p>Doors at six</p>"}
	if rec := call(t, app, http.MethodPost, "/articles/administer", "", article); rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous create = %d, want 403", rec.Code)
	}
	if rec := call(t, app, http.MethodPost, "/articles/administer", login.Token, article); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	if rec := call(t, app, http.MethodPost, "/articles/administer/1/publish", login.Token, nil); rec.Code != http.StatusOK {
		t.Fatalf("publish = %d %s", rec.Code, rec.Body.String())
	}
	if rec := call(t, app, http.MethodGet, "/articles/published", "", nil); !strings.Contains(rec.Body.String(), "Doors at six") {
		t.Fatalf("published = %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewRejectsMismatchedKeys(t *testing.T) {
	cfg := memoryConfig(t, constants.ModuleAuth)
	_, other := tokentest.Keys(t)
	cfg.JWT.PrivateKey = tokentest.PrivatePEM(t, other)

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New accepted a private key that does not match the public key")
	}
}
