// Package reldate renders how long ago (or until) a timestamp is, in words,
// using the same thresholds as date-fns formatDistance with a suffix.
package reldate

import (
	"fmt"
	"math"
	"time"
)

// DefaultLocale is used when an unknown locale is requested.
const DefaultLocale = "pt-BR"

const (
	minutesInDay           = 1440
	minutesInAlmostTwoDays = 2520
	minutesInMonth         = 43200
	minutesInTwoMonths     = 86400
)

type unit int

const (
	lessThanXMinutes unit = iota
	xMinutes
	aboutXHours
	xDays
	aboutXMonths
	xMonths
	aboutXYears
	overXYears
	almostXYears
)

type plural struct {
	one   string
	other string // %d is replaced by the count
}

type locale struct {
	units  map[unit]plural
	future func(string) string
	past   func(string) string
}

var locales = map[string]locale{
	"pt-BR": {
		units: map[unit]plural{
			lessThanXMinutes: {"menos de um minuto", "menos de %d minutos"},
			xMinutes:         {"1 minuto", "%d minutos"},
			aboutXHours:      {"cerca de 1 hora", "cerca de %d horas"},
			xDays:            {"1 dia", "%d dias"},
			aboutXMonths:     {"cerca de 1 mês", "cerca de %d meses"},
			xMonths:          {"1 mês", "%d meses"},
			aboutXYears:      {"cerca de 1 ano", "cerca de %d anos"},
			overXYears:       {"mais de 1 ano", "mais de %d anos"},
			almostXYears:     {"quase 1 ano", "quase %d anos"},
		},
		future: func(s string) string { return "em " + s },
		past:   func(s string) string { return "há " + s },
	},
	"en-US": {
		units: map[unit]plural{
			lessThanXMinutes: {"less than a minute", "less than %d minutes"},
			xMinutes:         {"1 minute", "%d minutes"},
			aboutXHours:      {"about 1 hour", "about %d hours"},
			xDays:            {"1 day", "%d days"},
			aboutXMonths:     {"about 1 month", "about %d months"},
			xMonths:          {"1 month", "%d months"},
			aboutXYears:      {"about 1 year", "about %d years"},
			overXYears:       {"over 1 year", "over %d years"},
			almostXYears:     {"almost 1 year", "almost %d years"},
		},
		future: func(s string) string { return "in " + s },
		past:   func(s string) string { return s + " ago" },
	},
}

// Supported reports whether tag names a locale with its own wording.
func Supported(tag string) bool {
	_, ok := locales[tag]
	return ok
}

// Locales lists the supported locale tags.
func Locales() []string {
	return []string{"pt-BR", "en-US"}
}

// FromNow labels t relative to the current time.
func FromNow(t time.Time, localeTag string) string {
	return Label(t, time.Now(), localeTag)
}

// Label labels t relative to now, e.g. "há 5 minutos" or "em 2 dias".
func Label(t, now time.Time, localeTag string) string {
	loc, ok := locales[localeTag]
	if !ok {
		loc = locales[DefaultLocale]
	}

	future := t.After(now)
	earlier, later := t, now
	if future {
		earlier, later = now, t
	}

	u, count := distance(earlier, later)
	p := loc.units[u]
	text := p.one
	if count != 1 {
		text = fmt.Sprintf(p.other, count)
	}

	if future {
		return loc.future(text)
	}
	return loc.past(text)
}

func distance(earlier, later time.Time) (unit, int) {
	seconds := int64(later.Sub(earlier) / time.Second)
	minutes := roundHalfUp(float64(seconds) / 60)

	switch {
	case minutes < 2:
		if minutes == 0 {
			return lessThanXMinutes, 1
		}
		return xMinutes, minutes
	case minutes < 45:
		return xMinutes, minutes
	case minutes < 90:
		return aboutXHours, 1
	case minutes < minutesInDay:
		return aboutXHours, roundHalfUp(float64(minutes) / 60)
	case minutes < minutesInAlmostTwoDays:
		return xDays, 1
	case minutes < minutesInMonth:
		return xDays, roundHalfUp(float64(minutes) / minutesInDay)
	case minutes < minutesInTwoMonths:
		return aboutXMonths, roundHalfUp(float64(minutes) / minutesInMonth)
	}

	months := monthsBetween(earlier, later)
	if months < 12 {
		nearest := roundHalfUp(float64(minutes) / minutesInMonth)
		if nearest < 1 {
			nearest = 1
		}
		return xMonths, nearest
	}

	sinceStartOfYear := months % 12
	years := months / 12
	switch {
	case sinceStartOfYear < 3:
		return aboutXYears, years
	case sinceStartOfYear < 9:
		return overXYears, years
	default:
		return almostXYears, years + 1
	}
}

// monthsBetween counts whole calendar months from earlier to later.
func monthsBetween(earlier, later time.Time) int {
	earlier, later = earlier.UTC(), later.UTC()
	months := (later.Year()-earlier.Year())*12 + int(later.Month()-earlier.Month())

	// the last month is incomplete when later has not reached earlier's
	// day-of-month and time of day yet
	anniversary := earlier.AddDate(0, months, 0)
	if anniversary.After(later) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
