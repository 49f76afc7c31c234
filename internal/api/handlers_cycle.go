package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/totoro/internal/cycle"
	"github.com/terraincognita07/totoro/internal/models"
)

func (handler *Handler) Stats(c *fiber.Ctx) error {
	stats, err := handler.cycles.Stats()
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newStatisticsResponse(stats))
}

// Status describes one day, today unless ?date= is given.
func (handler *Handler) Status(c *fiber.Ctx) error {
	day, err := parseDayParam(c, "date", cycle.DateOnly(handler.today()))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	status, err := handler.cycles.Status(day)
	if err != nil {
		return handler.serviceError(c, err)
	}
	profile, err := handler.settings.LoadSettings()
	if err != nil {
		return handler.serviceError(c, err)
	}

	response := statusResponse{
		Date:        models.NewDay(status.Date),
		Phase:       status.Phase,
		PhaseLabel:  translateFromContext(c, "phase."+string(status.Phase)),
		DayOfCycle:  status.DayOfCycle,
		DisplayName: profile.DisplayName,
		Statistics:  newStatisticsResponse(status.Statistics),
	}
	if status.Phase != cycle.PhaseUnknown && status.DayOfCycle > 0 {
		response.DayOfCycleLabel = handler.translatef(c, "status.day_of_cycle", status.DayOfCycle, status.AverageCycleLength)
	}
	if status.HasPrediction {
		daysUntil := status.DaysUntilNextPeriod
		response.DaysUntilNextPeriod = &daysUntil
	}
	return c.JSON(response)
}

// Calendar renders the six-week grid for ?month=YYYY-MM, the current month by
// default.
func (handler *Handler) Calendar(c *fiber.Ctx) error {
	today := cycle.DateOnly(handler.today())
	month, err := parseMonthParam(c, "month", today)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	states, err := handler.cycles.Calendar(month, today)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(calendarResponse{
		Month: month.Format(monthLayout),
		Days:  newCalendarDayResponses(states),
	})
}

func (handler *Handler) CalendarRange(c *fiber.Ctx) error {
	from, err := parseDayParam(c, "from", cycle.DateOnly(handler.today()))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	to, err := parseDayParam(c, "to", from)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	days, err := handler.cycles.Span(from, to)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newHighlightResponses(days))
}

func (handler *Handler) translatef(c *fiber.Ctx, key string, args ...any) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return handler.i18n.Translatef(language, key, args...)
}
