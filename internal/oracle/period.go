package oracle

import (
	"strings"
	"time"

	"dompet/internal/core"
)

// Period phrases, longest first so "minggu lalu" wins over "minggu". The
// "<unit> kemarin" forms mean the previous unit and come before bare "kemarin".
var periods = []struct {
	phrase string
	label  string
	span   func(today time.Time) (time.Time, time.Time)
}{
	{"hari ini", "hari ini", func(d time.Time) (time.Time, time.Time) { return d, d }},
	{"minggu kemarin", "minggu lalu", lastWeek},
	{"bulan kemarin", "bulan lalu", lastMonth},
	{"tahun kemarin", "tahun lalu", lastYear},
	{"kemarin", "kemarin", func(d time.Time) (time.Time, time.Time) {
		y := d.AddDate(0, 0, -1)
		return y, y
	}},
	{"minggu lalu", "minggu lalu", lastWeek},
	{"minggu ini", "minggu ini", thisWeek},
	{"bulan lalu", "bulan lalu", lastMonth},
	{"bulan ini", "bulan ini", thisMonth},
	{"tahun lalu", "tahun lalu", lastYear},
	{"tahun ini", "tahun ini", thisYear},
	// bare units mean the current one
	{"minggu", "minggu ini", thisWeek},
	{"bulan", "bulan ini", thisMonth},
	{"tahun", "tahun ini", thisYear},
}

// weekStart returns the Monday of d's week.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func thisWeek(d time.Time) (time.Time, time.Time) {
	start := weekStart(d)
	return start, start.AddDate(0, 0, 6)
}

func lastWeek(d time.Time) (time.Time, time.Time) {
	start := weekStart(d).AddDate(0, 0, -7)
	return start, start.AddDate(0, 0, 6)
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
}

func thisMonth(d time.Time) (time.Time, time.Time) {
	start := monthStart(d)
	return start, start.AddDate(0, 1, -1)
}

func lastMonth(d time.Time) (time.Time, time.Time) {
	start := monthStart(d).AddDate(0, -1, 0)
	return start, start.AddDate(0, 1, -1)
}

func thisYear(d time.Time) (time.Time, time.Time) { return yearSpan(d.Year()) }

func lastYear(d time.Time) (time.Time, time.Time) { return yearSpan(d.Year() - 1) }

func yearSpan(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// ResolvePeriod finds the first period phrase in text and returns its
// inclusive range relative to now. ok is false when no phrase matches.
func ResolvePeriod(text string, now time.Time) (label string, start, end core.Date, ok bool) {
	lower := strings.ToLower(text)
	today := core.DateOf(now).Time
	for _, p := range periods {
		if strings.Contains(lower, p.phrase) {
			s, e := p.span(today)
			return p.label, core.DateOf(s), core.DateOf(e), true
		}
	}
	return "", core.Date{}, core.Date{}, false
}
