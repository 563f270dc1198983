package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"forum-account/internal/service"
)

func newProtectedRouter(jwtSvc *service.JWTService) *gin.Engine {
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		userID, ok := GetAuthUserID(c)
		if !ok || userID != "u1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthMiddleware_AllowsValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := service.NewJWTService("secret")
	token, err := jwtSvc.Issue("u1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newProtectedRouter(jwtSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	newProtectedRouter(service.NewJWTService("secret")).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_RejectsBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	foreign, err := service.NewJWTService("other-secret").Issue("u1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	for _, header := range []string{"Basic dTE6cHc=", "Bearer garbage", "Bearer " + foreign} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		newProtectedRouter(service.NewJWTService("secret")).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", header, rec.Code)
		}
	}
}

func TestJWTAuthMiddleware_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	newProtectedRouter(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
