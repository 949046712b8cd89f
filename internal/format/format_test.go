package format

import "testing"

func TestDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{-5, "0s"},
		{0, "0s"},
		{1, "1s"},
		{59, "59s"},
		{60, "1m"},
		{119, "1m"},
		{3599, "59m"},
		{3600, "1h"},
		{3660, "1h 1m"},
		{5025, "1h 23m"},
		{90000, "25h"},
	}

	for _, tt := range tests {
		if got := Duration(tt.seconds); got != tt.want {
			t.Errorf("Duration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestHours(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0.0"},
		{-1, "0.0"},
		{1800, "0.5"},
		{5400, "1.5"},
		{36000, "10.0"},
	}

	for _, tt := range tests {
		if got := Hours(tt.seconds); got != tt.want {
			t.Errorf("Hours(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{-3, "00:00:00"},
		{0, "00:00:00"},
		{61, "00:01:01"},
		{3723, "01:02:03"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		if got := Clock(tt.seconds); got != tt.want {
			t.Errorf("Clock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
