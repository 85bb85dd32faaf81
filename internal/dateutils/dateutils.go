// Package dateutils parses ISO 20022 date and date-time values and renders them
// with user-facing patterns such as "DD.MM.YYYY".
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Go layouts used throughout the application.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutSwiss     = "02.01.2006"
	DateTimeLayoutSwiss = "02.01.2006 15:04:05"
	DateTimeLayoutISO   = "2006-01-02T15:04:05"
	DateTimeLayoutZone  = "2006-01-02T15:04:05Z07:00"
	DateLayoutISOZone   = "2006-01-02Z07:00"
)

// ISOFormats are tried in order by ParseTimestamp. Fractional seconds are
// accepted by time.Parse after the seconds field without being in the layout.
var ISOFormats = []string{
	DateTimeLayoutZone,
	DateTimeLayoutISO,
	DateLayoutISO,
	DateLayoutISOZone,
	"2006-01-02 15:04:05",
	DateLayoutSwiss,
}

// ParseTimestamp parses an ISDate or ISODateTime value as found in camt
// messages (e.g. "2024-11-04", "2024-11-04T17:20:37.942+01:00"). The wall
// clock of the source is kept; no zone conversion happens.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range ISOFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}

var patternTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"mm", "04"},
	{"DD", "02"},
	{"HH", "15"},
	{"SS", "05"},
	{"ss", "05"},
}

// Format renders t with a pattern like "DD.MM.YYYY" or "DD-MM-YYYY HH:MM:SS".
// "MM" following an hour token means minutes. Every character that is not
// part of a token is copied verbatim, so literals such as "Tag 1" or "Jan"
// are never read as layout elements. A pattern that already is a Go layout
// (contains "2006") is handed to time.Format unchanged.
func Format(t time.Time, pattern string) string {
	if strings.Contains(pattern, "2006") {
		return t.Format(pattern)
	}

	var b strings.Builder
	last := ""
	for i := 0; i < len(pattern); {
		matched := false
		for _, pt := range patternTokens {
			if !strings.HasPrefix(pattern[i:], pt.token) {
				continue
			}
			layout := pt.layout
			if pt.token == "MM" && last == "HH" {
				layout = "04"
			}
			b.WriteString(t.Format(layout))
			last = pt.token
			i += len(pt.token)
			matched = true
			break
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}

// Reformat parses value with ParseTimestamp and renders it with pattern.
func Reformat(value, pattern string) (string, error) {
	t, err := ParseTimestamp(value)
	if err != nil {
		return "", err
	}
	return Format(t, pattern), nil
}

// ToSwissFormat formats a time.Time as DD.MM.YYYY, followed by HH:MM:SS when
// the time of day is not midnight.
func ToSwissFormat(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	if date.Hour() == 0 && date.Minute() == 0 && date.Second() == 0 {
		return date.Format(DateLayoutSwiss)
	}
	return date.Format(DateTimeLayoutSwiss)
}
