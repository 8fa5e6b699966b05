package gate

import (
	"github.com/gofiber/fiber/v2"

	"github.com/partyplanning/console/internal/observability"
	"github.com/partyplanning/console/internal/session"
)

const sessionKey = "console_session"

// SnapshotSource supplies the session to check. *session.Store satisfies it.
type SnapshotSource interface {
	Snapshot() session.Session
}

// Middleware guards a route with Decide, re-evaluated on every request.
// Allowed requests find the checked session via SessionFromContext.
func Middleware(source SnapshotSource, metrics *observability.Metrics, required RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := source.Snapshot()
		decision := Decide(sess, required)
		metrics.RecordDecision(decision.String())

		if decision != Allow {
			return c.Redirect(decision.Location(), fiber.StatusFound)
		}
		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// SessionFromContext returns the session checked by Middleware.
func SessionFromContext(c *fiber.Ctx) (session.Session, bool) {
	sess, ok := c.Locals(sessionKey).(session.Session)
	return sess, ok
}
