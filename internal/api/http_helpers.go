package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/totoro/internal/cycle"
	"github.com/terraincognita07/totoro/internal/services"
)

const monthLayout = "2006-01"

// apiError writes the JSON error envelope. message is a catalogue key and is
// translated into the request language.
func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": translateFromContext(c, message)})
}

func translateFromContext(c *fiber.Ctx, key string) string {
	messages, ok := c.Locals(contextMessagesKey).(map[string]string)
	if !ok {
		return key
	}
	if value, ok := messages[key]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	return key
}

// serviceError maps domain sentinels to HTTP statuses. Anything unexpected is
// logged and reported as 500.
func (handler *Handler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, cycle.ErrInvalidRange):
		return apiError(c, fiber.StatusBadRequest, "error.invalid_period_range")
	case errors.Is(err, cycle.ErrDateOutOfRange):
		return apiError(c, fiber.StatusBadRequest, "error.date_out_of_range")
	case errors.Is(err, services.ErrPeriodAlreadyRecorded):
		return apiError(c, fiber.StatusConflict, "error.period_already_recorded")
	case errors.Is(err, services.ErrPeriodOutOfOrder):
		return apiError(c, fiber.StatusConflict, "error.period_out_of_order")
	case errors.Is(err, services.ErrInvalidCalendarRange),
		errors.Is(err, services.ErrUnsupportedLanguage),
		errors.Is(err, services.ErrDisplayNameTooLong):
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	case errors.Is(err, services.ErrPassphraseInvalid):
		return apiError(c, fiber.StatusUnauthorized, "error.invalid_passphrase")
	case errors.Is(err, services.ErrOwnerLockDisabled):
		return apiError(c, fiber.StatusConflict, "error.owner_lock_disabled")
	}

	handler.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return apiError(c, fiber.StatusInternalServerError, "error.internal")
}

// parseDayParam reads an optional YYYY-MM-DD query value. A missing value
// yields fallback.
func parseDayParam(c *fiber.Ctx, name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	return cycle.ParseDay(raw)
}

func parseMonthParam(c *fiber.Ctx, name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return services.MonthStart(fallback), nil
	}
	return time.ParseInLocation(monthLayout, raw, time.UTC)
}
