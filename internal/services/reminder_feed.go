package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/terraincognita07/totoro/internal/cycle"
)

const (
	feedProductID    = "-//totoro//cycle reminders//EN"
	feedVersion      = "2.0"
	feedUIDDomain    = "totoro.local"
	feedAlarmHour    = 9
	propCalendarName = "X-WR-CALNAME"
	propCategories   = "CATEGORIES"
	alarmActionShow  = "DISPLAY"
)

var feedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://"+feedUIDDomain+"/reminders"))

// ReminderUID is stable for a reminder kind on a given day, so calendar
// clients update events in place when the feed is refreshed.
func ReminderUID(reminder cycle.Reminder) string {
	name := string(reminder.Kind) + ":" + cycle.FormatDay(reminder.Date)
	return uuid.NewSHA1(feedNamespace, []byte(name)).String() + "@" + feedUIDDomain
}

// BuildReminderFeed encodes reminders as all-day events, each with a
// DISPLAY alarm on the morning of its fire day.
func BuildReminderFeed(reminders []cycle.Reminder, calendarName string, now time.Time) ([]byte, error) {
	if len(reminders) == 0 {
		return []byte(emptyFeed(calendarName)), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, feedVersion)
	cal.Props.SetText(ical.PropProductID, feedProductID)
	cal.Props.SetText(propCalendarName, calendarName)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for _, reminder := range reminders {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, ReminderUID(reminder))
		event.Props.Set(stamp)
		event.Props.SetText(ical.PropSummary, reminder.Title)
		event.Props.SetText(ical.PropDescription, reminder.Body)
		event.Props.SetText(propCategories, string(reminder.Kind))

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(reminder.Date)
		event.Props.Set(start)

		end := ical.NewProp(ical.PropDateTimeEnd)
		end.SetDate(cycle.AddDays(reminder.Date, 1))
		event.Props.Set(end)

		addDisplayAlarm(event, reminder)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode reminder feed: %w", err)
	}
	return buf.Bytes(), nil
}

func addDisplayAlarm(event *ical.Event, reminder cycle.Reminder) {
	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, alarmActionShow)
	alarm.Props.SetText(ical.PropDescription, reminder.Body)

	// set by hand so the value is not quoted as TEXT
	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = alarmTrigger(reminder)
	alarm.Props.Set(trigger)

	event.Children = append(event.Children, alarm)
}

// alarmTrigger is the offset from the event's midnight start to
// feedAlarmHour on the fire day.
func alarmTrigger(reminder cycle.Reminder) string {
	hours := cycle.DaysBetween(reminder.Date, reminder.FireAt)*24 + feedAlarmHour
	if hours < 0 {
		return fmt.Sprintf("-PT%dH", -hours)
	}
	return fmt.Sprintf("PT%dH", hours)
}

func emptyFeed(calendarName string) string {
	return "BEGIN:VCALENDAR\r\n" +
		"VERSION:" + feedVersion + "\r\n" +
		"PRODID:" + feedProductID + "\r\n" +
		propCalendarName + ":" + escapeFeedText(calendarName) + "\r\n" +
		"END:VCALENDAR\r\n"
}

func escapeFeedText(value string) string {
	var buf bytes.Buffer
	for _, r := range value {
		switch r {
		case '\\', ';', ',':
			buf.WriteRune('\\')
			buf.WriteRune(r)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
