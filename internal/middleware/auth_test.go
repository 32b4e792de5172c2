package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/identity"
)

func newGateRouter(t *testing.T) (*gin.Engine, *identity.JWTVerifier, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier := identity.NewJWTVerifier("test-secret")
	reached := false

	r := gin.New()
	r.GET("/protected", VerifyToken(verifier, zap.NewNop()), func(c *gin.Context) {
		reached = true
		email, _ := PrincipalEmail(c)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return r, verifier, &reached
}

func TestVerifyTokenRejectsMalformedHeaders(t *testing.T) {
	r, verifier, reached := newGateRouter(t)
	valid, _ := verifier.IssueToken("a@x.com", time.Minute)

	cases := map[string]string{
		"missing":      "",
		"no prefix":    valid,
		"wrong scheme": "Basic " + valid,
		"empty token":  "Bearer ",
		"bad token":    "Bearer not-a-token",
		"extra parts":  "Bearer " + valid + " extra",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
		if *reached {
			t.Fatalf("%s: handler must not run", name)
		}
	}
}

func TestVerifyTokenBindsPrincipal(t *testing.T) {
	r, verifier, reached := newGateRouter(t)
	token, _ := verifier.IssueToken("Donor@X.com", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !*reached {
		t.Fatalf("expected 200 and handler reached, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"email":"donor@x.com"}` {
		t.Fatalf("unexpected body %s", body)
	}
}
