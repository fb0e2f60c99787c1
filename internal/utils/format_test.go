package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{
			name:     "zero duration",
			duration: 0,
			want:     "0s",
		},
		{
			name:     "negative duration",
			duration: -45 * time.Second,
			want:     "45s",
		},
		{
			name:     "seconds only",
			duration: 45 * time.Second,
			want:     "45s",
		},
		{
			name:     "minutes and seconds",
			duration: 5*time.Minute + 30*time.Second,
			want:     "5m 30s",
		},
		{
			name:     "hours and minutes",
			duration: 3*time.Hour + 15*time.Minute,
			want:     "3h 15m",
		},
		{
			name:     "days and hours",
			duration: 48*time.Hour + 6*time.Hour,
			want:     "2d 6h",
		},
		{
			name:     "exactly one day",
			duration: 24 * time.Hour,
			want:     "1d 0h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.duration); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(time.Time{}); got != "unknown" {
		t.Errorf("FormatTimestamp(zero) = %q, want %q", got, "unknown")
	}

	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)
	if got := FormatTimestamp(ts); got != "2024-05-01 10:30" {
		t.Errorf("FormatTimestamp() = %q, want %q", got, "2024-05-01 10:30")
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "zero time", t: time.Time{}, want: "unknown"},
		{name: "same instant", t: now, want: "just now"},
		{name: "hours ago", t: now.Add(-2*time.Hour - 30*time.Minute), want: "2h 30m ago"},
		{name: "days ago", t: now.Add(-3 * 24 * time.Hour), want: "3d 0h ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAge(tt.t, now); got != tt.want {
				t.Errorf("FormatAge() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestYesNo(t *testing.T) {
	if YesNo(true) != "yes" || YesNo(false) != "no" {
		t.Errorf("YesNo() = %q/%q, want yes/no", YesNo(true), YesNo(false))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"a longer string", 8, "a lon..."},
		{"abcdef", 3, "..."},
		{"unlimited", 0, "unlimited"},
		{"ñandú-perfil", 6, "ñan..."},
	}

	for _, tt := range tests {
		if got := Truncate(tt.s, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}
