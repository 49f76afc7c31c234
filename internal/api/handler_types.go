package api

import (
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
	"github.com/terraincognita07/totoro/internal/models"
	"github.com/terraincognita07/totoro/internal/services"
)

type periodPayload struct {
	Start string `json:"start" form:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" form:"end" validate:"required,datetime=2006-01-02"`
}

type settingsPayload struct {
	DisplayName string `json:"display_name" form:"display_name" validate:"max=256"`
	Language    string `json:"language" form:"language" validate:"omitempty,max=16"`
}

type tokenPayload struct {
	Passphrase string `json:"passphrase" form:"passphrase" validate:"required,max=1024"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type periodResponse struct {
	Start  models.Day `json:"start"`
	End    models.Day `json:"end"`
	Length int        `json:"length"`
}

type statisticsResponse struct {
	AveragePeriodLength int        `json:"average_period_length"`
	AverageCycleLength  int        `json:"average_cycle_length"`
	NextPeriodStart     models.Day `json:"next_period_start"`
	OvulationDay        models.Day `json:"ovulation_day"`
	FertileWindowStart  models.Day `json:"fertile_window_start"`
	FertileWindowEnd    models.Day `json:"fertile_window_end"`
	HasPrediction       bool       `json:"has_prediction"`
}

type statusResponse struct {
	Date                models.Day         `json:"date"`
	Phase               cycle.Phase        `json:"phase"`
	PhaseLabel          string             `json:"phase_label"`
	DayOfCycle          int                `json:"day_of_cycle"`
	DayOfCycleLabel     string             `json:"day_of_cycle_label,omitempty"`
	DaysUntilNextPeriod *int               `json:"days_until_next_period"`
	DisplayName         string             `json:"display_name"`
	Statistics          statisticsResponse `json:"statistics"`
}

type calendarDayResponse struct {
	Date        string      `json:"date"`
	Day         int         `json:"day"`
	InMonth     bool        `json:"in_month"`
	IsToday     bool        `json:"is_today"`
	IsPeriod    bool        `json:"is_period"`
	IsOvulation bool        `json:"is_ovulation"`
	IsFertility bool        `json:"is_fertility"`
	Phase       cycle.Phase `json:"phase"`
}

type calendarResponse struct {
	Month string                `json:"month"`
	Days  []calendarDayResponse `json:"days"`
}

type highlightResponse struct {
	Date      models.Day `json:"date"`
	Period    bool       `json:"period"`
	Ovulation bool       `json:"ovulation"`
	Fertile   bool       `json:"fertile"`
}

type reminderResponse struct {
	Kind   cycle.ReminderKind `json:"kind"`
	Title  string             `json:"title"`
	Body   string             `json:"body"`
	Date   models.Day         `json:"date"`
	FireAt models.Day         `json:"fire_at"`
}

type settingsResponse struct {
	DisplayName string   `json:"display_name"`
	Language    string   `json:"language"`
	Locked      bool     `json:"locked"`
	Languages   []string `json:"languages"`
}

func newPeriodResponses(history cycle.History) []periodResponse {
	result := make([]periodResponse, 0, len(history))
	for _, record := range history {
		result = append(result, periodResponse{
			Start:  models.NewDay(record.Start),
			End:    models.NewDay(record.End),
			Length: record.Length(),
		})
	}
	return result
}

func newStatisticsResponse(stats cycle.Statistics) statisticsResponse {
	return statisticsResponse{
		AveragePeriodLength: stats.AveragePeriodLength,
		AverageCycleLength:  stats.AverageCycleLength,
		NextPeriodStart:     models.NewDay(stats.NextPeriodStart),
		OvulationDay:        models.NewDay(stats.OvulationDay),
		FertileWindowStart:  models.NewDay(stats.FertileWindowStart),
		FertileWindowEnd:    models.NewDay(stats.FertileWindowEnd),
		HasPrediction:       stats.HasPrediction(),
	}
}

func newCalendarDayResponses(states []services.CalendarDayState) []calendarDayResponse {
	result := make([]calendarDayResponse, 0, len(states))
	for _, state := range states {
		result = append(result, calendarDayResponse{
			Date:        state.DateString,
			Day:         state.Day,
			InMonth:     state.InMonth,
			IsToday:     state.IsToday,
			IsPeriod:    state.IsPeriod,
			IsOvulation: state.IsOvulation,
			IsFertility: state.IsFertility,
			Phase:       state.Phase,
		})
	}
	return result
}

func newHighlightResponses(days []cycle.DayHighlight) []highlightResponse {
	result := make([]highlightResponse, 0, len(days))
	for _, day := range days {
		result = append(result, highlightResponse{
			Date:      models.NewDay(day.Date),
			Period:    day.Period,
			Ovulation: day.Ovulation,
			Fertile:   day.Fertile,
		})
	}
	return result
}

func newReminderResponses(reminders []cycle.Reminder) []reminderResponse {
	result := make([]reminderResponse, 0, len(reminders))
	for _, reminder := range reminders {
		result = append(result, reminderResponse{
			Kind:   reminder.Kind,
			Title:  reminder.Title,
			Body:   reminder.Body,
			Date:   models.NewDay(reminder.Date),
			FireAt: models.NewDay(reminder.FireAt),
		})
	}
	return result
}
