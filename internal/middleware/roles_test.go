package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/models"
	"blooddonation/internal/store"
)

type lookupFunc func(ctx context.Context, email string) (*models.User, error)

func (f lookupFunc) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f(ctx, email)
}

func usersByEmail(users ...models.User) UserLookup {
	return lookupFunc(func(_ context.Context, email string) (*models.User, error) {
		for i := range users {
			if users[i].Email == email {
				return &users[i], nil
			}
		}
		return nil, store.ErrNotFound
	})
}

func serveAs(t *testing.T, email string, h gin.HandlerFunc) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if email != "" {
			c.Set(principalKey, email)
		}
	}, h, func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			t.Fatal("CurrentUser missing after guard")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestRequireRole(t *testing.T) {
	users := usersByEmail(
		models.User{Email: "admin@x.com", Role: models.RoleAdmin, Status: models.StatusActive},
		models.User{Email: "vol@x.com", Role: models.RoleVolunteer, Status: models.StatusActive},
		models.User{Email: "blocked@x.com", Role: models.RoleAdmin, Status: models.StatusBlocked},
		models.User{Email: "donor@x.com", Role: models.RoleDonor, Status: models.StatusActive},
	)
	staff := RequireRole(users, zap.NewNop(), models.RoleAdmin, models.RoleVolunteer)

	cases := map[string]int{
		"admin@x.com":   http.StatusNoContent,
		"vol@x.com":     http.StatusNoContent,
		"donor@x.com":   http.StatusForbidden,
		"blocked@x.com": http.StatusForbidden,
		"ghost@x.com":   http.StatusForbidden,
		"":              http.StatusUnauthorized,
	}
	for email, want := range cases {
		if got := serveAs(t, email, staff); got != want {
			t.Fatalf("%q: expected %d, got %d", email, want, got)
		}
	}
}

func TestLoadUserAdmitsBlockedButRequireActiveDoesNot(t *testing.T) {
	users := usersByEmail(models.User{Email: "b@x.com", Role: models.RoleDonor, Status: models.StatusBlocked})

	if got := serveAs(t, "b@x.com", LoadUser(users, zap.NewNop())); got != http.StatusNoContent {
		t.Fatalf("LoadUser: expected 204, got %d", got)
	}
	if got := serveAs(t, "b@x.com", RequireActive(users, zap.NewNop())); got != http.StatusForbidden {
		t.Fatalf("RequireActive: expected 403, got %d", got)
	}
}
