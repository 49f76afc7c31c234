package cycle

import (
	"fmt"
	"time"
)

type ReminderKind string

const (
	ReminderPeriod    ReminderKind = "period"
	ReminderOvulation ReminderKind = "ovulation"
	ReminderFertile   ReminderKind = "fertile"
)

type Reminder struct {
	Kind   ReminderKind `json:"kind"`
	Title  string       `json:"title"`
	Body   string       `json:"body"`
	Date   time.Time    `json:"date"`
	FireAt time.Time    `json:"fire_at"`
}

// ReminderFormatter returns the title and body for one reminder kind.
type ReminderFormatter func(kind ReminderKind, displayName string) (string, string)

// DefaultReminderText is the built-in English copy.
func DefaultReminderText(kind ReminderKind, displayName string) (string, string) {
	switch kind {
	case ReminderPeriod:
		return "Period Starting Soon", fmt.Sprintf("%s's cycle is beginning tomorrow!", displayName)
	case ReminderOvulation:
		return "Ovulation Day", fmt.Sprintf("%s is ovulating today!", displayName)
	case ReminderFertile:
		return "Fertile Window Beginning", fmt.Sprintf("%s's fertile window is starting tomorrow!", displayName)
	default:
		return string(kind), ""
	}
}

// Reminders projects one reminder per present date. Period and fertile
// reminders fire the day before; the ovulation reminder fires on the day.
func Reminders(stats Statistics, displayName string, format ReminderFormatter) []Reminder {
	if format == nil {
		format = DefaultReminderText
	}

	reminders := make([]Reminder, 0, 3)
	add := func(kind ReminderKind, date time.Time, leadDays int) {
		if date.IsZero() {
			return
		}
		title, body := format(kind, displayName)
		reminders = append(reminders, Reminder{
			Kind:   kind,
			Title:  title,
			Body:   body,
			Date:   DateOnly(date),
			FireAt: AddDays(date, -leadDays),
		})
	}

	add(ReminderPeriod, stats.NextPeriodStart, 1)
	add(ReminderOvulation, stats.OvulationDay, 0)
	add(ReminderFertile, stats.FertileWindowStart, 1)
	return reminders
}

// DueOn keeps the reminders whose fire day is day.
func DueOn(reminders []Reminder, day time.Time) []Reminder {
	due := make([]Reminder, 0, len(reminders))
	for _, reminder := range reminders {
		if SameDay(reminder.FireAt, day) {
			due = append(due, reminder)
		}
	}
	return due
}
