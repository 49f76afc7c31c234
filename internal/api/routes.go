package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", handler.LanguageMiddleware)
	api.Post("/auth/token", handler.IssueToken)

	protected := api.Group("", handler.AuthRequired)
	protected.Get("/periods", handler.ListPeriods)
	protected.Post("/periods", handler.RecordPeriod)
	protected.Delete("/periods", handler.ClearPeriods)
	protected.Get("/stats", handler.Stats)
	protected.Get("/status", handler.Status)
	protected.Get("/calendar", handler.Calendar)
	protected.Get("/calendar/range", handler.CalendarRange)
	protected.Get("/calendar.ics", handler.CalendarFeed)
	protected.Get("/reminders", handler.ListReminders)
	protected.Get("/settings", handler.GetSettings)
	protected.Post("/settings", handler.UpdateSettings)

	app.Use(handler.LanguageMiddleware, handler.NotFound)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "error.not_found")
}
