package dateutil

import (
	"fmt"
	"testing"
	"time"
)

func TestDayKey_NormalizesToStartOfDay(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	late := time.Date(2025, 12, 22, 23, 59, 59, 0, loc)
	early := time.Date(2025, 12, 22, 0, 0, 1, 0, loc)

	if DayKey(late) != "2025-12-22" {
		t.Fatalf("DayKey(23:59) = %s", DayKey(late))
	}
	if DayKey(late) != DayKey(early) {
		t.Fatalf("same day must produce same key: %s vs %s", DayKey(late), DayKey(early))
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:00", "08:00", false},
		{"23:59", "23:59", false},
		{"00:00", "00:00", false},
		{"21:00:00", "21:00", false},
		{"08:15:59", "08:15", false},
		{" 09:30 ", "09:30", false},
		{"24:00", "", true},
		{"08:00:zz", "", true},
		{"08:00:60", "", true},
		{"08:00:5", "", true},
		{"12:60", "", true},
		{"9:5", "", true},
		{"9:05", "", true},
		{"", "", true},
		{"morning", "", true},
		{"12-30", "", true},
	}

	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"00:00", "12:00 AM"},
		{"00:30", "12:30 AM"},
		{"09:05", "9:05 AM"},
		{"12:00", "12:00 PM"},
		{"13:45", "1:45 PM"},
		{"23:59", "11:59 PM"},
		{"21:00:00", "9:00 PM"},
		// malformado: se devuelve tal cual, sin panic
		{"not-a-time", "not-a-time"},
		{"25:00", "25:00"},
		{"08:00:zz", "08:00:zz"},
		{"", ""},
	}

	for _, c := range cases {
		if got := FormatClock(c.in); got != c.want {
			t.Errorf("FormatClock(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatClock_AllMinutes(t *testing.T) {
	// Los 1440 valores válidos deben producir display 12h sin fallar.
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			in := fmt.Sprintf("%02d:%02d", h, m)
			out := FormatClock(in)
			if out == in {
				t.Fatalf("FormatClock(%q) did not format", in)
			}
		}
	}
}

func TestClockMinutes(t *testing.T) {
	if got := ClockMinutes("08:30"); got != 510 {
		t.Fatalf("ClockMinutes(08:30) = %d", got)
	}
	if got := ClockMinutes("bad"); got != -1 {
		t.Fatalf("ClockMinutes(bad) = %d, want -1", got)
	}
}
