package cycle

import "time"

type Phase string

const (
	PhaseUnknown   Phase = "unknown"
	PhasePeriod    Phase = "period"
	PhaseFertile   Phase = "fertile"
	PhaseOvulation Phase = "ovulation"
	PhaseRegular   Phase = "regular"
)

type Classification struct {
	Phase      Phase `json:"phase"`
	DayOfCycle int   `json:"day_of_cycle"`
}

// Classify labels query against the prediction. Rules are checked in order and
// the first match wins. The fertile window always contains the ovulation day
// for statistics built by Predict, so the ovulation rule only fires for
// snapshots whose ovulation day sits outside their own window.
func Classify(stats Statistics, history History, query time.Time) Classification {
	latest, ok := history.Latest()
	if !ok {
		return Classification{Phase: PhaseUnknown}
	}

	result := Classification{DayOfCycle: DaysBetween(latest.Start, query) + 1}

	switch {
	case stats.AverageCycleLength <= 0:
		result.Phase = PhaseUnknown
	case latest.Contains(query):
		result.Phase = PhasePeriod
	case BetweenInclusive(query, stats.FertileWindowStart, stats.FertileWindowEnd):
		result.Phase = PhaseFertile
	case SameDay(query, stats.OvulationDay):
		result.Phase = PhaseOvulation
	default:
		result.Phase = PhaseRegular
	}
	return result
}

// Highlights answers plain membership for calendar colouring. Period covers
// every recorded period, not only the latest one.
type Highlights struct {
	Period    bool `json:"period"`
	Ovulation bool `json:"ovulation"`
	Fertile   bool `json:"fertile"`
}

func Highlight(stats Statistics, history History, day time.Time) Highlights {
	highlights := Highlights{
		Ovulation: SameDay(day, stats.OvulationDay),
		Fertile:   BetweenInclusive(day, stats.FertileWindowStart, stats.FertileWindowEnd),
	}
	for _, record := range history {
		if record.Contains(day) {
			highlights.Period = true
			break
		}
	}
	return highlights
}

type DayHighlight struct {
	Date time.Time `json:"date"`
	Highlights
}

// Span evaluates Highlight for every day in [from, to]. A reversed range is empty.
func Span(stats Statistics, history History, from time.Time, to time.Time) []DayHighlight {
	from, to = DateOnly(from), DateOnly(to)
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil
	}

	days := make([]DayHighlight, 0, DaysBetween(from, to)+1)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		days = append(days, DayHighlight{Date: day, Highlights: Highlight(stats, history, day)})
	}
	return days
}
