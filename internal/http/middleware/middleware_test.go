// README: Tests for the auth and internal-token middleware.
package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"homecall/internal/http/middleware"
	"homecall/internal/infra"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

func newAuthRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		uid, _ := c.Get(middleware.UIDKey)
		c.JSON(http.StatusOK, gin.H{"uid": uid})
	})
	return r
}

func get(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingHeader(t *testing.T) {
	r := newAuthRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "u1"}})
	if w := get(r, "/test", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{err: errors.New("bad token")})
	w := get(r, "/test", map[string]string{"Authorization": "Bearer nope"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthValidToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "u1"}})
	w := get(r, "/test", map[string]string{"Authorization": "Bearer good"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthNilVerifierIsNoop(t *testing.T) {
	r := newAuthRouter(nil)
	if w := get(r, "/test", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func newInternalRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.InternalToken(secret))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestInternalTokenMatch(t *testing.T) {
	r := newInternalRouter("s3cret")
	w := get(r, "/test", map[string]string{"X-Internal-Token": "s3cret"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestInternalTokenMismatch(t *testing.T) {
	r := newInternalRouter("s3cret")
	w := get(r, "/test", map[string]string{"X-Internal-Token": "wrong"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestInternalTokenEmptySecretRejectsAll(t *testing.T) {
	r := newInternalRouter("")
	w := get(r, "/test", map[string]string{"X-Internal-Token": ""})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
