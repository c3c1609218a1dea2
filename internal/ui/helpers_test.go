package ui

import (
	"testing"
	"time"
)

func TestParseFrom(t *testing.T) {
	loc := time.FixedZone("TestLocal", 2*60*60)
	now := time.Date(2024, 3, 9, 17, 45, 30, 0, loc)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"09:15", time.Date(2024, 3, 9, 9, 15, 0, 0, loc)},
		{" 2024-03-01 08:00 ", time.Date(2024, 3, 1, 8, 0, 0, 0, loc)},
		{"2024-03-01 08:00:42", time.Date(2024, 3, 1, 8, 0, 42, 0, loc)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, loc)},
		{"2023-11-14T22:13:20Z", time.Unix(1700000000, 0)},
	}
	for _, tc := range cases {
		got, err := parseFrom(tc.in, now)
		if err != nil {
			t.Fatalf("parseFrom(%q) error: %v", tc.in, err)
		}
		if got == nil || !got.Equal(tc.want) {
			t.Fatalf("parseFrom(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFrom_EmptyClears(t *testing.T) {
	got, err := parseFrom("   ", time.Now())
	if err != nil || got != nil {
		t.Fatalf("parseFrom(blank) = %v, %v; want nil, nil", got, err)
	}
}

func TestParseFrom_Invalid(t *testing.T) {
	if _, err := parseFrom("yesterday", time.Now()); err == nil {
		t.Fatal("parseFrom(yesterday) expected error")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"connection reset", 6, "conne…"},
		{"abc", 1, "…"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}
