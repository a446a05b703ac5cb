package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lendly/lendly/internal/auth"
	"github.com/lendly/lendly/internal/user"
)

func newAuthApp(t *testing.T) (*fiber.App, user.Repository, *auth.TokenIssuer) {
	t.Helper()

	repo := user.NewMemoryRepository()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	app := fiber.New()
	grp := app.Group("/user", Auth(tokens, repo))
	grp.Post("/setup-profile", func(c *fiber.Ctx) error {
		if _, ok := user.FromContext(c); ok {
			return c.SendString("authenticated")
		}
		return c.SendString("anonymous")
	})
	grp.Get("/profile", RequireUser(), func(c *fiber.Ctx) error {
		u, _ := user.FromContext(c)
		return c.SendString(u.ID)
	})
	grp.Get("/admin", RequireUser(), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("admin ok")
	})
	return app, repo, tokens
}

func request(t *testing.T, app *fiber.App, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	return resp
}

func TestAuthRejectsMissingToken(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := request(t, app, http.MethodGet, "/user/profile", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := request(t, app, http.MethodGet, "/user/profile", "not-a-token")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthResolvesUser(t *testing.T) {
	app, repo, tokens := newAuthApp(t)

	u := &user.User{PhoneNumber: "9876543210"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := tokens.Issue(u.ID, false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := request(t, app, http.MethodGet, "/user/profile", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	app, _, tokens := newAuthApp(t)

	token, err := tokens.Issue("ghost-user", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := request(t, app, http.MethodGet, "/user/profile", token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown subject, got %d", resp.StatusCode)
	}
}

func TestOnboardingPathPassesThroughWithoutToken(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := request(t, app, http.MethodPost, "/user/setup-profile", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected pass-through 200, got %d", resp.StatusCode)
	}
}

func TestRequireAdmin(t *testing.T) {
	app, repo, tokens := newAuthApp(t)
	ctx := context.Background()

	regular := &user.User{PhoneNumber: "9876543210"}
	if err := repo.Create(ctx, regular); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	admin := &user.User{PhoneNumber: "0000000000", IsAdmin: true}
	if err := repo.Create(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	regularToken, _ := tokens.Issue(regular.ID, false)
	adminToken, _ := tokens.Issue(admin.ID, true)

	resp := request(t, app, http.MethodGet, "/user/admin", regularToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", resp.StatusCode)
	}

	resp = request(t, app, http.MethodGet, "/user/admin", adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}
