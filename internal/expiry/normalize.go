package expiry

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Layout tags the shape of a date fragment so that calendar construction
// never has to guess it from the number or length of captured groups.
type Layout int

const (
	// LayoutMonthName is a month name followed by a year: "ABR 2026", "NOV.24".
	LayoutMonthName Layout = iota + 1
	// LayoutDayMonthYear is DD/MM/YYYY.
	LayoutDayMonthYear
	// LayoutMonthYear is MM/YYYY.
	LayoutMonthYear
	// LayoutYearMonthDay is YYYY-MM-DD.
	LayoutYearMonthDay
	// LayoutYearMonth is YYYY/MM.
	LayoutYearMonth
	// LayoutMonthShortYear is MM/YY, where YY is read as 20YY.
	LayoutMonthShortYear
)

func (l Layout) String() string {
	switch l {
	case LayoutMonthName:
		return "month_name"
	case LayoutDayMonthYear:
		return "dd/mm/yyyy"
	case LayoutMonthYear:
		return "mm/yyyy"
	case LayoutYearMonthDay:
		return "yyyy-mm-dd"
	case LayoutYearMonth:
		return "yyyy/mm"
	case LayoutMonthShortYear:
		return "mm/yy"
	}
	return "unknown"
}

// monthNames maps Spanish month names and abbreviations, plus the English
// abbreviations that differ from them, to calendar months.
var monthNames = map[string]time.Month{
	"ENE": time.January, "ENERO": time.January, "JAN": time.January,
	"FEB": time.February, "FEBRERO": time.February,
	"MAR": time.March, "MARZO": time.March,
	"ABR": time.April, "ABRIL": time.April, "APR": time.April,
	"MAY": time.May, "MAYO": time.May,
	"JUN": time.June, "JUNIO": time.June,
	"JUL": time.July, "JULIO": time.July,
	"AGO": time.August, "AGOSTO": time.August, "AUG": time.August,
	"SEP": time.September, "SEPT": time.September, "SET": time.September, "SEPTIEMBRE": time.September, "SETIEMBRE": time.September,
	"OCT": time.October, "OCTUBRE": time.October,
	"NOV": time.November, "NOVIEMBRE": time.November,
	"DIC": time.December, "DICIEMBRE": time.December, "DEC": time.December,
}

var monthNamePattern = regexp.MustCompile(`([A-Z]{3,})\.?[\s-]*(\d{2,4})`)

type numericForm struct {
	layout Layout
	re     *regexp.Regexp
}

// numericForms are tried in order; the first one that matches structurally
// decides the outcome.
var numericForms = []numericForm{
	{LayoutDayMonthYear, regexp.MustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})`)},
	{LayoutMonthYear, regexp.MustCompile(`(\d{1,2})[/.\-](\d{4})`)},
	{LayoutYearMonthDay, regexp.MustCompile(`(\d{4})[/.\-](\d{1,2})[/.\-](\d{1,2})`)},
	{LayoutYearMonth, regexp.MustCompile(`(\d{4})[/.\-](\d{1,2})`)},
	{LayoutMonthShortYear, regexp.MustCompile(`(\d{1,2})[/.\s\-](\d{2})\b`)},
}

// toUpper applies Spanish casing rules. A Caser holds state, so each call
// gets its own.
func toUpper(s string) string {
	return cases.Upper(language.Spanish).String(s)
}

// Normalize parses a raw date fragment into a calendar date. Partial dates
// (month and year only) resolve to the last day of the month. It reports
// false when the fragment cannot be turned into a real date.
func Normalize(text string) (Date, bool) {
	clean := toUpper(strings.TrimSpace(text))

	if m := monthNamePattern.FindStringSubmatch(clean); m != nil {
		if _, known := monthNames[m[1]]; known {
			return Build(LayoutMonthName, m[1], m[2])
		}
	}

	for _, form := range numericForms {
		m := form.re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		return Build(form.layout, m[1:]...)
	}
	return Date{}, false
}

// Build constructs a date from the groups of a fragment whose layout is
// already known. Groups are given in the order they appear in the layout's
// name. It reports false for wrong arity or impossible dates.
func Build(layout Layout, parts ...string) (Date, bool) {
	switch layout {
	case LayoutMonthName:
		if len(parts) != 2 {
			return Date{}, false
		}
		month, ok := monthNames[toUpper(strings.TrimSpace(parts[0]))]
		if !ok {
			return Date{}, false
		}
		year, ok := parseYear(parts[1])
		if !ok {
			return Date{}, false
		}
		return EndOfMonth(year, month), true

	case LayoutDayMonthYear:
		if len(parts) != 3 {
			return Date{}, false
		}
		return exact(parts[2], parts[1], parts[0])

	case LayoutYearMonthDay:
		if len(parts) != 3 {
			return Date{}, false
		}
		return exact(parts[0], parts[1], parts[2])

	case LayoutMonthYear:
		if len(parts) != 2 {
			return Date{}, false
		}
		return lastDay(parts[1], parts[0])

	case LayoutYearMonth:
		if len(parts) != 2 {
			return Date{}, false
		}
		return lastDay(parts[0], parts[1])

	case LayoutMonthShortYear:
		if len(parts) != 2 || len(parts[1]) != 2 {
			return Date{}, false
		}
		return lastDay(parts[1], parts[0])
	}
	return Date{}, false
}

// parseYear reads a two-digit year as 20YY and a four-digit year as-is.
func parseYear(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch len(s) {
	case 2:
		return 2000 + n, true
	case 4:
		return n, n > 0
	}
	return 0, false
}

func parseMonth(s string) (time.Month, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return time.Month(n), true
}

func exact(year, month, day string) (Date, bool) {
	y, ok := parseYear(year)
	if !ok {
		return Date{}, false
	}
	m, ok := parseMonth(month)
	if !ok {
		return Date{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return Date{}, false
	}
	return NewDate(y, m, d)
}

func lastDay(year, month string) (Date, bool) {
	y, ok := parseYear(year)
	if !ok {
		return Date{}, false
	}
	m, ok := parseMonth(month)
	if !ok {
		return Date{}, false
	}
	return EndOfMonth(y, m), true
}
