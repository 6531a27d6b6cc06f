package helpers

import (
	"errors"
	"testing"
	"time"
)

func TestParseDayMonthTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"15.02 19:00", time.Date(2026, 2, 15, 19, 0, 0, 0, time.UTC)},
		{"5.4.27 7:05", time.Date(2027, 4, 5, 7, 5, 0, 0, time.UTC)},
		{"в субботу 20.03.2026 18:30", time.Date(2026, 3, 20, 18, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDayMonthTime(tc.in, now)
		if err != nil {
			t.Fatalf("%q: unexpected err %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDayMonthTimeRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := ParseDayMonthTime("завтра вечером", now); !errors.Is(err, ErrDateFormat) {
		t.Fatalf("expected ErrDateFormat, got %v", err)
	}
	for _, in := range []string{"31.02 10:00", "10.13 10:00", "10.10 24:00", "10.10 10:61"} {
		if _, err := ParseDayMonthTime(in, now); !errors.Is(err, ErrDateRange) {
			t.Fatalf("%q: expected ErrDateRange, got %v", in, err)
		}
	}
}
