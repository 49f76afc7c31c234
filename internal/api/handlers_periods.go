package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/totoro/internal/cycle"
)

func (handler *Handler) ListPeriods(c *fiber.Ctx) error {
	history, err := handler.cycles.History()
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newPeriodResponses(history))
}

// RecordPeriod appends one period and answers with the refreshed prediction.
func (handler *Handler) RecordPeriod(c *fiber.Ctx) error {
	payload := periodPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	start, err := cycle.ParseDay(payload.Start)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	end, err := cycle.ParseDay(payload.End)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	stats, err := handler.cycles.RecordPeriod(start, end)
	if err != nil {
		return handler.serviceError(c, err)
	}
	handler.logger.Info("period recorded", "start", payload.Start, "end", payload.End)
	return c.Status(fiber.StatusCreated).JSON(newStatisticsResponse(stats))
}

func (handler *Handler) ClearPeriods(c *fiber.Ctx) error {
	if err := handler.cycles.ClearAll(); err != nil {
		return handler.serviceError(c, err)
	}
	handler.logger.Info("cycle history cleared")
	return c.SendStatus(fiber.StatusNoContent)
}
