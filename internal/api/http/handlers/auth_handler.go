package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/partyplanning/console/internal/api/dto"
	"github.com/partyplanning/console/internal/domain"
	"github.com/partyplanning/console/internal/gate"
	"github.com/partyplanning/console/internal/session"
	apperrors "github.com/partyplanning/console/pkg/util/errorutil"
)

// Sessions is the session handle the console operates on.
type Sessions interface {
	Snapshot() session.Session
	Login(ctx context.Context, creds domain.Credentials) session.Session
	Logout(ctx context.Context) session.Session
	ClearError() session.Session
}

// AuthHandler exposes the session operations to the console.
type AuthHandler struct {
	sessions  Sessions
	validator *RequestValidator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions Sessions, validator *RequestValidator) *AuthHandler {
	return &AuthHandler{sessions: sessions, validator: validator}
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.SessionResponse{Session: h.sessions.Snapshot()}})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validator.Validate(&req); err != nil {
		return err
	}

	snap := h.sessions.Login(c.UserContext(), domain.Credentials{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})

	switch snap.Status {
	case domain.StatusAuthenticated:
		return c.JSON(fiber.Map{"data": dto.SessionResponse{
			Session:  snap,
			Redirect: gate.DefaultRoute(snap.User.Role),
		}})
	case domain.StatusFailed:
		return apperrors.NewLoginFailed(snap.ErrorKind, snap.ErrorMessage)
	default:
		return apperrors.NewConflict("sign-in superseded by a newer request", map[string]any{"status": snap.Status})
	}
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	snap := h.sessions.Logout(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.SessionResponse{Session: snap, Redirect: gate.LoginPath}})
}

// ClearError handles POST /auth/clear-error.
func (h *AuthHandler) ClearError(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.SessionResponse{Session: h.sessions.ClearError()}})
}
