package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	tok, err := s.Issue("sid-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sid, err := s.Parse(tok)
	if err != nil || sid != "sid-1" {
		t.Fatalf("Parse: sid=%q err=%v", sid, err)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	tok, _ := NewSigner("one", time.Hour).Issue("sid-1")
	if _, err := NewSigner("two", time.Hour).Parse(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("want ErrInvalid, got=%v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	s := NewSigner("secret", time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }
	tok, _ := s.Issue("sid-1")
	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := s.Parse(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("want ErrInvalid for expired token, got=%v", err)
	}
}

func TestMiddlewareMintsAndReusesSession(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	var seen string
	h := s.Middleware(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	first := seen
	if first == "" {
		t.Fatalf("no session id on context")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || !cookies[0].HttpOnly {
		t.Fatalf("cookie: %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != first {
		t.Fatalf("session not reused: first=%q second=%q", first, seen)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("valid cookie should not be reissued")
	}
}

func TestMiddlewareReplacesTamperedCookie(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	var seen string
	h := s.Middleware(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ID(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen == "" || len(rec.Result().Cookies()) != 1 {
		t.Fatalf("tampered cookie should yield a fresh session")
	}
}

func TestIDOutsideMiddleware(t *testing.T) {
	if sid := ID(httptest.NewRequest(http.MethodGet, "/", nil)); sid != "" {
		t.Fatalf("want empty id without middleware, got %q", sid)
	}
}
