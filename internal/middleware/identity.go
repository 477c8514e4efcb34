// Package middleware provides HTTP middleware for the fiber boundary.
package middleware

import (
	"strconv"

	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AccountIDHeader carries the caller's account id, resolved by the
// upstream gateway from its authenticated session. This service trusts the
// gateway and never sees credentials.
const AccountIDHeader = "X-Account-ID"

// AccountIDKey is the locals key under which the caller's account id is
// stored for handlers.
const AccountIDKey = "accountID"

// RequireAccountID extracts the caller's account id from the gateway
// header and stores it in the request locals.
func RequireAccountID(c *fiber.Ctx) error {
	raw := c.Get(AccountIDHeader)
	if raw == "" {
		return response.Unauthorized(c)
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return response.Unauthorized(c)
	}

	c.Locals(AccountIDKey, uint(id))
	return c.Next()
}
