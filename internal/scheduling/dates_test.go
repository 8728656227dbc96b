package scheduling

import (
	"regexp"
	"testing"
	"time"
)

// Wednesday 2025-06-11 10:00 local.
var wednesdayNow = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

func TestNormalizeDateRelativeWords(t *testing.T) {
	if got := NormalizeDate("hoje", wednesdayNow); got != "2025-06-11" {
		t.Fatalf("hoje: got %s", got)
	}
	if got := NormalizeDate("Amanhã", wednesdayNow); got != "2025-06-12" {
		t.Fatalf("amanhã: got %s", got)
	}
	if got := NormalizeDate("depois de amanhã", wednesdayNow); got != "2025-06-13" {
		t.Fatalf("depois de amanhã: got %s", got)
	}
}

func TestNormalizeDateWeekdaysAreStrictlyFuture(t *testing.T) {
	cases := map[string]string{
		"sexta":         "2025-06-13",
		"sexta-feira":   "2025-06-13",
		"próxima sexta": "2025-06-13",
		"sábado":        "2025-06-14",
		"domingo":       "2025-06-15",
		"segunda":       "2025-06-16",
		// Today is Wednesday; "quarta" must resolve to next week, never today.
		"quarta": "2025-06-18",
	}
	for input, want := range cases {
		if got := NormalizeDate(input, wednesdayNow); got != want {
			t.Fatalf("%q: expected %s, got %s", input, want, got)
		}
	}
}

func TestNormalizeDateExplicitFormats(t *testing.T) {
	if got := NormalizeDate("25/12/2025", wednesdayNow); got != "2025-12-25" {
		t.Fatalf("DD/MM/YYYY: got %s", got)
	}
	if got := NormalizeDate("25/12", wednesdayNow); got != "2025-12-25" {
		t.Fatalf("DD/MM defaults to reference year: got %s", got)
	}
	if got := NormalizeDate("2025-07-01", wednesdayNow); got != "2025-07-01" {
		t.Fatalf("ISO passthrough: got %s", got)
	}
}

func TestNormalizeDateNeverReturnsRawInput(t *testing.T) {
	isoRe := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inputs := []string{"", "qualquer dia", "sextaaa", "32/13", "um texto longo sem data", "???"}
	for _, input := range inputs {
		got := NormalizeDate(input, wednesdayNow)
		if !isoRe.MatchString(got) {
			t.Fatalf("%q: result %q is not canonical", input, got)
		}
		if got == input {
			t.Fatalf("%q: raw input leaked through", input)
		}
		if got != "2025-06-11" {
			t.Fatalf("%q: unrecognized input should resolve to reference day, got %s", input, got)
		}
	}
}

func TestIsBusinessHours(t *testing.T) {
	cases := []struct {
		t    time.Time
		open bool
	}{
		{time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC), true},   // Wed 08:00
		{time.Date(2025, 6, 11, 16, 59, 0, 0, time.UTC), true}, // Wed 16:59
		{time.Date(2025, 6, 11, 17, 0, 0, 0, time.UTC), false}, // Wed 17:00
		{time.Date(2025, 6, 11, 7, 59, 0, 0, time.UTC), false}, // Wed 07:59
		{time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC), true},  // Sat 12:00
		{time.Date(2025, 6, 14, 13, 0, 0, 0, time.UTC), false}, // Sat 13:00
		{time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC), false}, // Sun
	}
	for _, tc := range cases {
		if got := IsBusinessHours(tc.t); got != tc.open {
			t.Fatalf("%s: expected open=%v, got %v", tc.t, tc.open, got)
		}
	}
}

func TestNextBusinessDaySkipsOnlySunday(t *testing.T) {
	friday := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)
	if got := NextBusinessDay(friday); got.Weekday() != time.Saturday {
		t.Fatalf("from Friday expected Saturday, got %s", got.Weekday())
	}

	saturday := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	if got := NextBusinessDay(saturday); got.Weekday() != time.Monday {
		t.Fatalf("from Saturday expected Monday, got %s", got.Weekday())
	}
}
