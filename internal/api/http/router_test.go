package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/partyplanning/console/internal/api/http/handlers"
	"github.com/partyplanning/console/internal/auth"
	"github.com/partyplanning/console/internal/credentials"
	"github.com/partyplanning/console/internal/observability"
	"github.com/partyplanning/console/internal/session"
	"github.com/partyplanning/console/internal/sidechannel"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	accounts, err := credentials.DemoAccounts(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("DemoAccounts: %v", err)
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := session.NewStore(session.Options{
		Verifier:    credentials.NewDirectory(0, accounts...),
		SideChannel: sidechannel.NewMemory(),
		Tokens:      auth.NewTokenManager("test-secret", 60),
		Metrics:     metrics,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler("test", "dev", nil),
		Auth:     handlers.NewAuthHandler(store, handlers.NewRequestValidator()),
		Views:    handlers.NewViewsHandler(),
		Sessions: store,
		Metrics:  metrics,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("invalid json %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, nethttp.MethodGet, "/admin/dashboard", "")
	if resp.StatusCode != nethttp.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, body := do(t, app, nethttp.MethodPost, "/auth/login", `{"email":"admin@partyplanning.com","password":"wrong"}`)
	if resp.StatusCode != nethttp.StatusUnauthorized || errorCode(body) != "WRONG_PASSWORD" {
		t.Fatalf("expected WRONG_PASSWORD, got %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, app, nethttp.MethodPost, "/auth/clear-error", "")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("clear-error: %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["session"].(map[string]any)["status"] != "idle" {
		t.Fatalf("expected idle after clear-error, got %v", data)
	}

	resp, body = do(t, app, nethttp.MethodPost, "/auth/login", `{"email":"admin@partyplanning.com","password":"password123","rememberMe":true}`)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("login: %d %v", resp.StatusCode, body)
	}
	data = body["data"].(map[string]any)
	if data["redirect"] != "/admin/dashboard" {
		t.Fatalf("expected admin landing page, got %v", data["redirect"])
	}

	resp, body = do(t, app, nethttp.MethodGet, "/admin/dashboard", "")
	if resp.StatusCode != nethttp.StatusOK || body["data"].(map[string]any)["view"] != "admin-dashboard" {
		t.Fatalf("expected admin dashboard, got %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, app, nethttp.MethodGet, "/manager/inventory", "")
	if resp.StatusCode != nethttp.StatusFound || resp.Header.Get("Location") != "/unauthorized" {
		t.Fatalf("expected redirect to unauthorized, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, _ = do(t, app, nethttp.MethodPost, "/auth/logout", "")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	resp, _ = do(t, app, nethttp.MethodGet, "/admin/dashboard", "")
	if resp.StatusCode != nethttp.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to login after logout, got %d", resp.StatusCode)
	}
}

func TestLoginValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"missing password", `{"email":"admin@partyplanning.com"}`},
		{"bad email", `{"email":"admin","password":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, nethttp.MethodPost, "/auth/login", tt.body)
			if resp.StatusCode != nethttp.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
				t.Fatalf("expected 400 VALIDATION_FAILED, got %d %v", resp.StatusCode, body)
			}
		})
	}

	_, body := do(t, app, nethttp.MethodGet, "/auth/session", "")
	if body["data"].(map[string]any)["session"].(map[string]any)["status"] != "idle" {
		t.Fatalf("validation errors must not reach the session: %v", body)
	}
}

func TestUnknownAccount(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, nethttp.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"anything"}`)
	if resp.StatusCode != nethttp.StatusUnauthorized || errorCode(body) != "ACCOUNT_NOT_FOUND" {
		t.Fatalf("expected ACCOUNT_NOT_FOUND, got %d %v", resp.StatusCode, body)
	}
}

func TestPublicViewsAndHealth(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/login", "/menu", "/health/live", "/health/ready"} {
		resp, _ := do(t, app, nethttp.MethodGet, path, "")
		if resp.StatusCode != nethttp.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}

	resp, body := do(t, app, nethttp.MethodGet, "/does-not-exist", "")
	if resp.StatusCode != nethttp.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("expected 404 envelope, got %d %v", resp.StatusCode, body)
	}
	if msg := body["error"].(map[string]any)["message"]; msg != "page /does-not-exist not found" {
		t.Fatalf("unexpected not-found message %v", msg)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	do(t, app, nethttp.MethodGet, "/admin/dashboard", "")

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `party_console_route_gate_decisions_total{decision="redirect_login"} 1`) {
		t.Fatalf("gate decision not exported:\n%s", raw)
	}
}
