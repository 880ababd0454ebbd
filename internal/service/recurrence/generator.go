package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// Candidate одно вычисленное вхождение серии
type Candidate struct {
	OriginalStart time.Time
	End           time.Time
}

// Candidates обходит дни от начала окна серии и возвращает вхождения, удовлетворяющие шаблону.
// День проверяется в часовом поясе loc, windowEnd включается целым календарным днём.
// Количество ограничено maxOccurrences и MaxExpansionCandidates, обход ограничен MaxExpansionDays
func Candidates(series *domain.RecurrenceSeries, loc *time.Location) ([]Candidate, error) {
	return walk(series, loc, nil)
}

// walk обходит дни серии. В результат и в лимит maxOccurrences попадают только кандидаты,
// для которых counted возвращает true; nil учитывает всех
func walk(series *domain.RecurrenceSeries, loc *time.Location, counted func(Candidate) bool) ([]Candidate, error) {
	if err := series.TimeOfDay.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	limit := domain.MaxExpansionCandidates
	if series.MaxOccurrences != nil && *series.MaxOccurrences < limit {
		limit = *series.MaxOccurrences
	}

	first := startOfDay(series.WindowStart, loc)
	var last time.Time
	if series.WindowEnd != nil {
		last = startOfDay(*series.WindowEnd, loc)
	}

	result := make([]Candidate, 0)
	day := first
	for i := 0; i < domain.MaxExpansionDays && len(result) < limit; i++ {
		if !last.IsZero() && day.After(last) {
			break
		}
		if matches(series, first, day) {
			start, err := series.TimeOfDay.On(day, loc)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			c := Candidate{OriginalStart: start, End: start.Add(series.Duration())}
			if counted == nil || counted(c) {
				result = append(result, c)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return result, nil
}

// matches проверяет шаблон серии для календарного дня day
func matches(series *domain.RecurrenceSeries, first, day time.Time) bool {
	switch series.Pattern {
	case domain.PatternDaily:
		return true
	case domain.PatternWeekly:
		return series.HasWeekday(day.Weekday())
	case domain.PatternBiweekly:
		if !series.HasWeekday(day.Weekday()) {
			return false
		}
		weeks := civilDays(mondayOf(first), mondayOf(day)) / 7
		return weeks%2 == 0
	case domain.PatternMonthly:
		return day.Day() == first.Day()
	default:
		return false
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// mondayOf возвращает понедельник недели, в которую попадает день
func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// civilDays число календарных дней между датами без учёта перевода часов
func civilDays(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// RRuleOption строит RFC 5545 правило, эквивалентное шаблону серии
func RRuleOption(series *domain.RecurrenceSeries, loc *time.Location) (*rrule.ROption, error) {
	first := startOfDay(series.WindowStart, loc)
	dtstart, err := series.TimeOfDay.On(first, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	opt := &rrule.ROption{
		Dtstart:  dtstart,
		Interval: 1,
		Wkst:     rrule.MO,
	}

	switch series.Pattern {
	case domain.PatternDaily:
		opt.Freq = rrule.DAILY
	case domain.PatternWeekly, domain.PatternBiweekly:
		opt.Freq = rrule.WEEKLY
		if series.Pattern == domain.PatternBiweekly {
			opt.Interval = 2
		}
		for _, d := range series.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[time.Weekday(d)])
		}
	case domain.PatternMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{first.Day()}
	default:
		return nil, fmt.Errorf("%w: unknown pattern %q", ErrInvalidInput, series.Pattern)
	}

	// UNTIL и COUNT не могут быть заданы одновременно
	switch {
	case series.WindowEnd != nil && series.MaxOccurrences != nil:
		candidates, err := Candidates(series, loc)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			opt.Until = dtstart.Add(-time.Second)
			break
		}
		opt.Until = candidates[len(candidates)-1].OriginalStart
	case series.WindowEnd != nil:
		opt.Until = startOfDay(*series.WindowEnd, loc).AddDate(0, 0, 1).Add(-time.Second)
	case series.MaxOccurrences != nil:
		opt.Count = *series.MaxOccurrences
	}

	return opt, nil
}

// SeriesRRule возвращает строку RRULE серии
func SeriesRRule(series *domain.RecurrenceSeries, loc *time.Location) (string, error) {
	opt, err := RRuleOption(series, loc)
	if err != nil {
		return "", err
	}
	if _, err := rrule.NewRRule(*opt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return opt.RRuleString(), nil
}
