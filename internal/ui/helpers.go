package ui

import (
	"fmt"
	"strings"
	"time"
)

var fromLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// parseFrom reads a logs filter typed by the operator. A bare HH:MM is taken
// as today in now's location. An empty input clears the filter.
func parseFrom(input string, now time.Time) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	loc := now.Location()
	if t, err := time.ParseInLocation("15:04", input, loc); err == nil {
		y, mo, d := now.Date()
		at := time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, loc)
		return &at, nil
	}
	for _, layout := range fromLayouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised time %q", input)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orNone(v string) string {
	if strings.TrimSpace(v) == "" {
		return "none"
	}
	return v
}

func firstLine(v string) string {
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		return v[:i]
	}
	return v
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
