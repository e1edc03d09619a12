package legacy

import (
	"testing"
	"time"
)

func TestParseAccessDate_ShiftsToUTC(t *testing.T) {
	// Access exports are local time; storage is UTC with a fixed offset.
	got := ParseAccessDate("08/07/12 00:00:00")
	want := time.Date(2012, time.August, 7, 0+AccessUTCOffset, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseAccessDate_CenturyPivot(t *testing.T) {
	cases := []struct {
		in   string
		year int
	}{
		{"01/15/30 10:00:00", 2030},
		{"01/15/31 10:00:00", 1931},
		{"01/15/99 10:00:00", 1999},
		{"01/15/00 10:00:00", 2000},
	}
	for _, c := range cases {
		if got := ParseAccessDate(c.in).Year(); got != c.year {
			t.Errorf("%s: year = %d, want %d", c.in, got, c.year)
		}
	}
}

func TestParseAccessDate_MalformedFallsBackToNow(t *testing.T) {
	before := time.Now().UTC()
	got := ParseAccessDate("not a date")
	after := time.Now().UTC()
	if got.Before(before.Add(-time.Second)) || got.After(after.Add(time.Second)) {
		t.Fatalf("malformed input should fall back to now, got %v", got)
	}
}

func TestParseDocDate(t *testing.T) {
	got := ParseDocDate("07.08.12")
	if got == nil {
		t.Fatal("expected a date")
	}
	want := time.Date(2012, time.August, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	full := ParseDocDate("07.08.2012")
	if full == nil || !full.Equal(want) {
		t.Fatalf("four-digit year: got %v, want %v", full, want)
	}

	for _, bad := range []string{"", "  ", "07.08", "7-8-12", "xx.yy.zz"} {
		if got := ParseDocDate(bad); got != nil {
			t.Errorf("ParseDocDate(%q) = %v, want nil", bad, got)
		}
	}
}

func TestParseSwissNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"3'493.75", 3493.75},
		{"4'590.00", 4590},
		{"1'234'567.89", 1234567.89},
		{"12,5", 12.5},
		{"-42.00", -42},
		{"CHF 100.50", 100.50},
		{"12.5x", 12.5},
		{"12.5.3", 12.5},
		{"1'000.25.", 1000.25},
		{"-", 0},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
	}
	for _, c := range cases {
		if got := ParseSwissNumber(c.in); got != c.want {
			t.Errorf("ParseSwissNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeFilenameASCII(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Localités", "Localites"},
		{"Ingénieurs", "Ingenieurs"},
		{"Heures mensuelles", "Heures_mensuelles"},
		{"TreeTable", "TreeTable"},
		{"a-b_c", "a-b_c"},
	}
	for _, c := range cases {
		if got := NormalizeFilenameASCII(c.in); got != c.want {
			t.Errorf("NormalizeFilenameASCII(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
