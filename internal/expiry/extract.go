package expiry

import (
	"regexp"
	"strings"
)

// CodeKind identifies which code rule produced a product code.
type CodeKind int

const (
	CodeNone CodeKind = iota
	// CodePrefixed is a code introduced by LOT, LOTE, COD, CODE or REF.
	CodePrefixed
	// CodeToken is a bare 6-20 character alphanumeric token.
	CodeToken
	// CodeBarcode is a 12-14 digit run.
	CodeBarcode
)

func (k CodeKind) String() string {
	switch k {
	case CodePrefixed:
		return "prefixed"
	case CodeToken:
		return "token"
	case CodeBarcode:
		return "barcode"
	}
	return "none"
}

// DateKind identifies which date rule produced an expiration date.
type DateKind int

const (
	DateNone DateKind = iota
	DateMonthName
	DateLabeledFull
	DateLabeledPartial
	DateNumericRun
	DateFull
	DateMonthYear
	DateISO
)

func (k DateKind) String() string {
	switch k {
	case DateMonthName:
		return "month_name"
	case DateLabeledFull:
		return "labeled_full"
	case DateLabeledPartial:
		return "labeled_partial"
	case DateNumericRun:
		return "numeric_run"
	case DateFull:
		return "full"
	case DateMonthYear:
		return "month_year"
	case DateISO:
		return "iso"
	}
	return "none"
}

// Extraction is what a single block of recognized text yielded. Fields that
// were not found are left at their zero value.
type Extraction struct {
	ProductCode string
	CodeKind    CodeKind

	// DateText is the raw fragment the date was read from.
	DateText string
	DateKind DateKind
	Date     Date
}

// Found reports whether either field was extracted.
func (e Extraction) Found() bool {
	return e.ProductCode != "" || !e.Date.IsZero()
}

type codeRule struct {
	kind CodeKind
	re   *regexp.Regexp
}

var codeRules = []codeRule{
	{CodePrefixed, regexp.MustCompile(`(?i)(?:LOTE|LOT|CODE|COD|REF)[\s:.\-]*([A-Z0-9\-]{4,20})`)},
	{CodeToken, regexp.MustCompile(`(?i)\b([A-Z0-9]{6,20})\b`)},
	{CodeBarcode, regexp.MustCompile(`\b(\d{12,14})\b`)},
}

// dateRule pairs a matcher with the resolver that turns its groups into a
// date. groups excludes the whole match.
type dateRule struct {
	kind    DateKind
	re      *regexp.Regexp
	resolve func(groups []string) (Date, bool)
}

// dateLabel must not follow a digit or a separator, so the tail of an ISO
// date such as 2012-04-26 is never read as a labeled day/month/year.
const dateLabel = `(?:^|[^\d/.\-])(?:EXPIRY|EXPIRA|EXP|VENCE|VTO|V|CADUCIDAD|CAD)?[\s:.\-]*`

func normalizeGroup(groups []string) (Date, bool) {
	return Normalize(groups[0])
}

func buildAs(layout Layout) func([]string) (Date, bool) {
	return func(groups []string) (Date, bool) {
		return Build(layout, groups...)
	}
}

// dateRules are evaluated in priority order. A rule whose first match does
// not resolve to a real date hands over to the next rule.
var dateRules = []dateRule{
	{DateMonthName, regexp.MustCompile(`(?i)\b(ENE|FEB|MAR|ABR|MAY|JUN|JUL|AGO|SEP|OCT|NOV|DIC)[A-Z]*\.?\s*(\d{2,4})\b`), buildAs(LayoutMonthName)},
	{DateLabeledFull, regexp.MustCompile(`(?i)` + dateLabel + `(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`), normalizeGroup},
	{DateLabeledPartial, regexp.MustCompile(`(?i)` + dateLabel + `(\d{1,2}[/.\-]\d{2,4})`), normalizeGroup},
	{DateNumericRun, regexp.MustCompile(`\b\d{4,}\s+(\d{1,2})\s+(\d{2})\b`), buildAs(LayoutMonthShortYear)},
	{DateFull, regexp.MustCompile(`\b(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})\b`), normalizeGroup},
	{DateMonthYear, regexp.MustCompile(`\b(\d{1,2}[/.\-]\d{4})\b`), normalizeGroup},
	{DateISO, regexp.MustCompile(`\b(\d{4}[/.\-]\d{1,2}[/.\-]\d{1,2})\b`), normalizeGroup},
}

// Extract finds the most likely product code and expiration date in one
// block of recognized text.
func Extract(text string) Extraction {
	var out Extraction
	out.ProductCode, out.CodeKind = extractCode(text)
	out.Date, out.DateText, out.DateKind = extractDate(text)
	return out
}

func extractCode(text string) (string, CodeKind) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, rule := range codeRules {
			if m := rule.re.FindStringSubmatch(line); m != nil {
				return m[1], rule.kind
			}
		}
	}
	return "", CodeNone
}

func extractDate(text string) (Date, string, DateKind) {
	flat := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	for _, rule := range dateRules {
		idx := rule.re.FindStringSubmatchIndex(flat)
		if idx == nil {
			continue
		}
		groups := make([]string, 0, len(idx)/2-1)
		for i := 2; i < len(idx); i += 2 {
			groups = append(groups, flat[idx[i]:idx[i+1]])
		}
		if d, ok := rule.resolve(groups); ok {
			// the fragment spans the captured groups, without any label
			return d, flat[idx[2]:idx[len(idx)-1]], rule.kind
		}
	}
	return Date{}, "", DateNone
}
