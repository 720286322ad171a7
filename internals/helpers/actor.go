package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ActorID reads the user_id the auth middleware stored; ok=false when the
// request is anonymous or the value is not a uuid.
func ActorID(c *fiber.Ctx) (uuid.UUID, bool) {
	var raw string
	switch t := c.Locals("user_id").(type) {
	case uuid.UUID:
		return t, t != uuid.Nil
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ActorLabel is ActorID for log lines.
func ActorLabel(c *fiber.Ctx) string {
	if id, ok := ActorID(c); ok {
		return id.String()
	}
	return "anonymous"
}
