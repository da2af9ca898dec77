package article

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-coordinator/core/constants"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token/tokentest"
	"go-coordinator/modules/article/dto"
	"go-coordinator/modules/article/repository"

	"github.com/labstack/echo/v4"
)

type articleServer struct {
	e     *echo.Echo
	token string
}

func newArticleServer(t *testing.T) *articleServer {
	t.Helper()
	fx := tokentest.NewFixture(t, time.Unix(1_700_000_000, 0))

	e := echo.New()
	Init(e, middleware.NewMiddleware(fx.Authenticator), repository.NewMemoryArticleRepository(), fx.Clock)
	return &articleServer{e: e, token: fx.Token(t, "admin", time.Hour)}
}

func (s *articleServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authed {
		req.Header.Set(constants.HeaderAuthToken, s.token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return envelope.Data
}

func (s *articleServer) create(t *testing.T, title, content string) dto.ArticleResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/articles/administer", dto.ArticleRequest{Title: title, Content: content}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %q: status %d: %s", title, rec.Code, rec.Body.String())
	}
	return decodeData[dto.ArticleResponse](t, rec)
}

func summaryTitles(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var titles []string
	for _, item := range decodeData[[]dto.ArticleSummaryResponse](t, rec) {
		titles = append(titles, item.Title)
	}
	return strings.Join(titles, "|")
}

func TestCreateArticle(t *testing.T) {
	s := newArticleServer(t)

	rec := s.do(t, http.MethodPost, "/articles/administer", dto.ArticleRequest{Title: "Fair", Content: "<p>Stalls</p>"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got, want := rec.Header().Get(echo.HeaderLocation), "/articles/administer/1"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
	if created := decodeData[dto.ArticleResponse](t, rec); created.Published || created.Content != "<p>Stalls</p>" {
		t.Errorf("created = %+v, want a draft", created)
	}
}

func TestCreateArticle_Invalid(t *testing.T) {
	s := newArticleServer(t)

	for name, req := range map[string]dto.ArticleRequest{
		"blank title": {Title: " ", Content: "<p>x</p>"},
		"no content":  {Title: "x"},
		"markup only": {Title: "x", Content: "<p> </p>"},
	} {
		t.Run(name, func(t *testing.T) {
			if rec := s.do(t, http.MethodPost, "/articles/administer", req, true); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAdministerRequiresToken(t *testing.T) {
	s := newArticleServer(t)
	s.create(t, "Draft", "wip")

	tests := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/articles/drafts", nil},
		{http.MethodPost, "/articles/administer", dto.ArticleRequest{Title: "x", Content: "y"}},
		{http.MethodPut, "/articles/administer/1", dto.ArticleRequest{Title: "x", Content: "y"}},
		{http.MethodDelete, "/articles/administer/1", nil},
		{http.MethodPost, "/articles/administer/1/publish", nil},
		{http.MethodGet, "/articles/administer/1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if rec := s.do(t, tt.method, tt.path, tt.body, false); rec.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", rec.Code)
			}
		})
	}
}

func TestPublishLifecycle(t *testing.T) {
	s := newArticleServer(t)
	s.create(t, "Spring fair", "<p>Music and <i>food</i></p>")
	s.create(t, "Board notes", "<p>Budget</p>")

	if got := summaryTitles(t, s.do(t, http.MethodGet, "/articles/drafts", nil, true)); got != "Board notes|Spring fair" {
		t.Fatalf("drafts = %q", got)
	}
	if got := summaryTitles(t, s.do(t, http.MethodGet, "/articles/published", nil, false)); got != "" {
		t.Fatalf("published = %q, want none", got)
	}

	rec := s.do(t, http.MethodPost, "/articles/administer/1/publish", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeData[dto.ArticleResponse](t, rec); !got.Published {
		t.Errorf("publish response = %+v", got)
	}

	published := s.do(t, http.MethodGet, "/articles/published?keywords=food", nil, false)
	if got := summaryTitles(t, published); got != "Spring fair" {
		t.Fatalf("published = %q", got)
	}
	if items := decodeData[[]dto.ArticleSummaryResponse](t, published); items[0].Summary != "Music and food" {
		t.Errorf("summary = %q, want markup stripped", items[0].Summary)
	}
	if got := summaryTitles(t, s.do(t, http.MethodGet, "/articles/drafts", nil, true)); got != "Board notes" {
		t.Errorf("drafts after publish = %q", got)
	}

	for name, path := range map[string]string{
		"already published": "/articles/administer/1/publish",
		"unknown":           "/articles/administer/9/publish",
		"malformed id":      "/articles/administer/x/publish",
	} {
		if rec := s.do(t, http.MethodPost, path, nil, true); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestGetArticle(t *testing.T) {
	s := newArticleServer(t)
	s.create(t, "Public", "<p>hello</p>")
	s.create(t, "Secret", "<p>draft</p>")
	if rec := s.do(t, http.MethodPost, "/articles/administer/1/publish", nil, true); rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d", rec.Code)
	}

	tests := []struct {
		name   string
		path   string
		authed bool
		want   int
	}{
		{"published anonymous", "/articles/administer/1", false, http.StatusOK},
		{"draft anonymous", "/articles/administer/2", false, http.StatusForbidden},
		{"draft with token", "/articles/administer/2", true, http.StatusOK},
		{"unknown", "/articles/administer/9", true, http.StatusNotFound},
		{"malformed id", "/articles/administer/abc", true, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := s.do(t, http.MethodGet, tt.path, nil, tt.authed); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestUpdateAndDeleteArticle(t *testing.T) {
	s := newArticleServer(t)
	s.create(t, "Old", "<p>old</p>")

	rec := s.do(t, http.MethodPut, "/articles/administer/1", dto.ArticleRequest{Title: "New", Content: "<p>new</p>"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeData[dto.ArticleResponse](t, rec); got.Title != "New" || got.Published {
		t.Errorf("updated = %+v", got)
	}
	if rec := s.do(t, http.MethodPut, "/articles/administer/7", dto.ArticleRequest{Title: "x", Content: "y"}, true); rec.Code != http.StatusNotFound {
		t.Errorf("unknown update status = %d, want 404", rec.Code)
	}

	for _, path := range []string{"/articles/administer/1", "/articles/administer/1", "/articles/administer/7"} {
		if rec := s.do(t, http.MethodDelete, path, nil, true); rec.Code != http.StatusNoContent {
			t.Fatalf("DELETE %s status = %d, want 204", path, rec.Code)
		}
	}
	if rec := s.do(t, http.MethodGet, "/articles/administer/1", nil, true); rec.Code != http.StatusNotFound {
		t.Errorf("deleted article status = %d, want 404", rec.Code)
	}
}
