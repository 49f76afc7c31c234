package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/totoro/internal/services"
)

// IssueToken trades the owner passphrase for a signed bearer token. Failed
// attempts are rate limited per client.
func (handler *Handler) IssueToken(c *fiber.Ctx) error {
	key := clientKey(c)
	now := handler.now()
	if handler.limiter.blocked(key, now) {
		return apiError(c, fiber.StatusTooManyRequests, "error.too_many_attempts")
	}

	payload := tokenPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	if err := handler.auth.VerifyPassphrase(payload.Passphrase); err != nil {
		if errors.Is(err, services.ErrPassphraseInvalid) {
			handler.limiter.fail(key, now)
			handler.logger.Warn("owner passphrase rejected", "client", key)
		}
		return handler.serviceError(c, err)
	}
	handler.limiter.clear(key)

	token, expiresAt, err := handler.buildToken(handler.tokenTTL)
	if err != nil {
		return handler.serviceError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Strict",
	})
	return c.JSON(tokenResponse{Token: token, ExpiresAt: expiresAt.UTC()})
}
