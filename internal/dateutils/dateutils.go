// Package dateutils parses invoice dates written in the layouts commonly found on invoices.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date layouts.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutSlash     = "02/01/2006"
	DateLayoutUS        = "01/02/2006"
	DateLayoutDash      = "02-01-2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutWithMonth = "2-Jan-2006"
)

// CommonFormats are tried, in order, after any template-specific layouts.
// Day-first layouts come before the US layout.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutEuropean,
	DateLayoutSlash,
	DateLayoutDash,
	DateLayoutUS,
	DateLayoutFull,
	DateLayoutWithMonth,
	"2006/01/02",
	"2.1.2006",
	"2/1/2006",
	"02.01.06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

var frenchMonths = strings.NewReplacer(
	"janvier", "January", "février", "February", "fevrier", "February",
	"mars", "March", "avril", "April", "mai", "May", "juin", "June",
	"juillet", "July", "août", "August", "aout", "August",
	"septembre", "September", "octobre", "October",
	"novembre", "November", "décembre", "December", "decembre", "December",
)

var spaces = regexp.MustCompile(`\s+`)

// ParseDate parses dateStr with the given layouts first, then CommonFormats.
// It returns the parsed time and the layout that matched.
func ParseDate(dateStr string, layouts ...string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}

	candidates := []string{dateStr}
	if translated := frenchMonths.Replace(strings.ToLower(dateStr)); translated != strings.ToLower(dateStr) {
		candidates = append(candidates, translated)
	}

	for _, layout := range append(append([]string{}, layouts...), CommonFormats...) {
		for _, candidate := range candidates {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, layout, nil
			}
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims, collapses whitespace and drops a leading "1er".
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(spaces.ReplaceAllString(dateStr, " "))
	dateStr = strings.TrimSuffix(dateStr, ".")
	if strings.HasPrefix(strings.ToLower(dateStr), "1er ") {
		dateStr = "1 " + dateStr[4:]
	}
	return dateStr
}
