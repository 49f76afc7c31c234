package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/totoro/internal/models"
	"github.com/terraincognita07/totoro/internal/services"
)

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	profile, err := handler.settings.LoadSettings()
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(handler.newSettingsResponse(profile))
}

// UpdateSettings stores the display name and language. Blank fields keep
// their current value.
func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	payload := settingsPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	profile, err := handler.settings.SaveSettings(services.SettingsUpdate{
		DisplayName: payload.DisplayName,
		Language:    payload.Language,
	})
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(handler.newSettingsResponse(profile))
}

func (handler *Handler) newSettingsResponse(profile models.Profile) settingsResponse {
	language := profile.Language
	if language == "" {
		language = handler.i18n.DefaultLanguage()
	}
	return settingsResponse{
		DisplayName: profile.DisplayName,
		Language:    language,
		Locked:      profile.Locked(),
		Languages:   handler.i18n.SupportedLanguages(),
	}
}
