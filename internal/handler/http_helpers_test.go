package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/logger"
)

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var payload struct {
		Error errorBody `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return payload.Error
}

func TestRespondErrorStatusMapping(t *testing.T) {
	api := &API{log: logger.Nop()}

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.New(apperr.CodeValidation, "bad field"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized", apperr.New(apperr.CodeUnauthorized, "login required"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperr.New(apperr.CodeForbidden, "nope"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", apperr.New(apperr.CodeNotFound, "missing"), http.StatusNotFound, "NOT_FOUND"},
		{"ambiguous", apperr.New(apperr.CodeAmbiguous, "two rows"), http.StatusConflict, "AMBIGUOUS"},
		{"empty", apperr.New(apperr.CodeEmptyPrecondition, "no data"), http.StatusUnprocessableEntity, "EMPTY_PRECONDITION"},
		{"unavailable", apperr.New(apperr.CodeServiceUnavailable, "ai down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/x", "")
			api.respondError(c, tc.err)

			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, w.Code)
			}
			if !c.IsAborted() {
				t.Fatal("expected context to be aborted")
			}
			if got := decodeError(t, w).Code; got != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, got)
			}
		})
	}
}

func TestRespondErrorHidesPersistenceDetails(t *testing.T) {
	api := &API{log: logger.Nop()}
	c, w := newTestContext(http.MethodGet, "/x", "")

	api.respondError(c, apperr.Wrap(apperr.CodePersistence, errors.New("no such table: users"), "load user"))

	body := decodeError(t, w)
	if body.Message != "could not save or load data" {
		t.Fatalf("expected public message, got %q", body.Message)
	}
	if strings.Contains(w.Body.String(), "no such table") {
		t.Fatalf("storage error leaked into response: %s", w.Body.String())
	}
}

func TestBindJSONValidationDetails(t *testing.T) {
	api := &API{log: logger.Nop()}
	c, w := newTestContext(http.MethodPost, "/x", `{"mood": 0}`)

	var payload moodRequest
	if api.bindJSON(c, &payload) {
		t.Fatal("expected binding to fail")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Code != "VALIDATION_ERROR" || !strings.Contains(body.Message, "Mood") {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestBindJSONMalformedBody(t *testing.T) {
	api := &API{log: logger.Nop()}
	c, w := newTestContext(http.MethodPost, "/x", `{"mood":`)

	var payload moodRequest
	if api.bindJSON(c, &payload) {
		t.Fatal("expected binding to fail")
	}
	if got := decodeError(t, w); got.Message != "malformed request body" {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestParseUintParam(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/x", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := parseUintParam(c, "id")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}

	for _, raw := range []string{"", "0", "-1", "abc"} {
		c.Params = gin.Params{{Key: "id", Value: raw}}
		if _, err := parseUintParam(c, "id"); !apperr.HasCode(err, apperr.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", raw, err)
		}
	}
}

func TestParseLimitQuery(t *testing.T) {
	cases := map[string]int{
		"/x":           10,
		"/x?limit=5":   5,
		"/x?limit=0":   10,
		"/x?limit=abc": 10,
		"/x?limit=500": 100,
	}
	for target, want := range cases {
		c, _ := newTestContext(http.MethodGet, target, "")
		if got := parseLimitQuery(c, 10, 100); got != want {
			t.Fatalf("%s: expected %d, got %d", target, want, got)
		}
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey(""); got != "" {
		t.Fatalf("expected empty mask for empty key, got %q", got)
	}
	if got := maskKey("abc"); got != "****" {
		t.Fatalf("expected full mask for short key, got %q", got)
	}
	if got := maskKey("sk-abcdef1234"); got != "****1234" {
		t.Fatalf("expected suffix mask, got %q", got)
	}
	if got := unmaskKey("****1234", "sk-abcdef1234"); got != "sk-abcdef1234" {
		t.Fatalf("masked submission should keep current key, got %q", got)
	}
	if got := unmaskKey("sk-new", "sk-abcdef1234"); got != "sk-new" {
		t.Fatalf("new key should replace current, got %q", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(logger.Nop()), RequestLogger(logger.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}
