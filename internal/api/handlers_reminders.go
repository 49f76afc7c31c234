package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListReminders(c *fiber.Ctx) error {
	set, err := handler.reminders.Reminders()
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newReminderResponses(set.Reminders))
}

// CalendarFeed serves the reminders as a subscribable iCalendar document.
func (handler *Handler) CalendarFeed(c *fiber.Ctx) error {
	feed, err := handler.reminders.Feed(handler.now().UTC())
	if err != nil {
		return handler.serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="totoro.ics"`)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(feed)
}
