package participant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-coordinator/core/constants"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token/tokentest"
	"go-coordinator/modules/event/client"
	"go-coordinator/modules/participant/dto"
	"go-coordinator/modules/participant/repository"
	"go-coordinator/modules/participant/service"

	"github.com/labstack/echo/v4"
)

var _ client.ParticipantVerifier = (*service.ParticipantService)(nil)

type participantServer struct {
	e     *echo.Echo
	token string
}

func newParticipantServer(t *testing.T) *participantServer {
	t.Helper()
	fx := tokentest.NewFixture(t, time.Unix(1_700_000_000, 0))
	e := echo.New()
	Init(e, middleware.NewMiddleware(fx.Authenticator), repository.NewMemoryParticipantRepository(), fx.Clock)
	return &participantServer{e: e, token: fx.Token(t, "admin", time.Hour)}
}

func (s *participantServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authed {
		req.Header.Set(constants.HeaderAuthToken, s.token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *participantServer) list(t *testing.T) []dto.ParticipantResponse {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/participants", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var envelope struct {
		Data []dto.ParticipantResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	return envelope.Data
}

var ada = dto.ParticipantRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PhoneNumber: "+44 20 0000"}

func TestRegisterAndList(t *testing.T) {
	s := newParticipantServer(t)

	if rec := s.do(t, http.MethodPost, "/participants", ada, false); rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	items := s.list(t)
	if len(items) != 1 {
		t.Fatalf("participants = %+v", items)
	}
	if items[0].Email != ada.Email || items[0].PhoneNumber != ada.PhoneNumber {
		t.Errorf("participant = %+v", items[0])
	}

	if rec := s.do(t, http.MethodPost, "/participants", ada, false); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}
}

func TestRegister_Invalid(t *testing.T) {
	s := newParticipantServer(t)

	bad := ada
	bad.Email = "not-an-email"
	if rec := s.do(t, http.MethodPost, "/participants", bad, false); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	bad = ada
	bad.LastName = " "
	if rec := s.do(t, http.MethodPost, "/participants", bad, false); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProtectedRoutes(t *testing.T) {
	s := newParticipantServer(t)

	if rec := s.do(t, http.MethodGet, "/participants", nil, false); rec.Code != http.StatusForbidden {
		t.Errorf("list status = %d, want 403", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/participants/1", nil, false); rec.Code != http.StatusForbidden {
		t.Errorf("delete status = %d, want 403", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	s := newParticipantServer(t)
	s.do(t, http.MethodPost, "/participants", ada, false)

	for _, path := range []string{"/participants/1", "/participants/1", "/participants/50"} {
		if rec := s.do(t, http.MethodDelete, path, nil, true); rec.Code != http.StatusNoContent {
			t.Fatalf("DELETE %s status = %d, want 204", path, rec.Code)
		}
	}
	if rec := s.do(t, http.MethodDelete, "/participants/abc", nil, true); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
	if items := s.list(t); len(items) != 0 {
		t.Errorf("participants = %+v, want none", items)
	}
}

func TestVerify(t *testing.T) {
	s := newParticipantServer(t)
	s.do(t, http.MethodPost, "/participants", ada, false)

	tests := []struct {
		email string
		want  int
	}{
		{"ada@example.com", http.StatusOK},
		{"bob@example.com", http.StatusNotFound},
		{"", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/participants/verify", dto.VerifyRequest{Email: tt.email}, false)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestVerifyOverHTTPClient(t *testing.T) {
	s := newParticipantServer(t)
	s.do(t, http.MethodPost, "/participants", ada, false)

	srv := httptest.NewServer(s.e)
	defer srv.Close()

	verifier := client.NewParticipantClient(srv.URL+"/participants/verify", time.Second)
	for email, want := range map[string]bool{"ada@example.com": true, "eve@example.com": false} {
		got, err := verifier.Verify(context.Background(), email)
		if err != nil || got != want {
			t.Errorf("Verify(%q) = %v, %v; want %v", email, got, err, want)
		}
	}
}
