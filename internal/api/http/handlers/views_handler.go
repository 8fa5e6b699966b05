package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/partyplanning/console/internal/api/dto"
	"github.com/partyplanning/console/internal/gate"
	"github.com/partyplanning/console/internal/views"
	apperrors "github.com/partyplanning/console/pkg/util/errorutil"
)

// ViewsHandler renders console view placeholders.
type ViewsHandler struct{}

// NewViewsHandler constructs handler.
func NewViewsHandler() *ViewsHandler {
	return &ViewsHandler{}
}

// Render returns the handler for view. It must run behind gate.Middleware.
func (h *ViewsHandler) Render(view views.View) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := gate.SessionFromContext(c)
		if !ok {
			return apperrors.NewInternalError(nil)
		}
		return c.JSON(fiber.Map{"data": dto.ViewResponse{
			View:    view.Name,
			Title:   view.Title,
			Path:    view.Path,
			Session: sess,
		}})
	}
}
