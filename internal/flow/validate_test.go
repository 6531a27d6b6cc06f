package flow

import (
	"testing"
	"time"

	"github.com/m3rciful/gamebot/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	res := ParseDate("20.03 18:00", testNow)
	if !res.OK() || !res.Value.Equal(time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseDate short = %+v", res)
	}
	res = ParseDate("05.01.27 9:30", testNow)
	if !res.OK() || !res.Value.Equal(time.Date(2027, 1, 5, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("ParseDate two-digit year = %+v", res)
	}

	for text, want := range map[string]string{
		"15.02 19:00":   MsgDatePast,
		"01.03 12:00":   MsgDatePast,
		"31.04 10:00":   MsgDateRange,
		"tomorrow":      MsgDateFormat,
		"2026-03-20 18": MsgDateFormat,
	} {
		if got := ParseDate(text, testNow); got.Msg != want {
			t.Fatalf("ParseDate(%q) msg = %q, want %q", text, got.Msg, want)
		}
	}
}

func TestParticipantBounds(t *testing.T) {
	if r := ValidateMaxParticipants("1"); r.OK() || r.Msg != MsgMaxRange {
		t.Fatalf("max 1 accepted: %+v", r)
	}
	if r := ValidateMaxParticipants("100"); !r.OK() || r.Value != 100 {
		t.Fatalf("max 100 rejected: %+v", r)
	}
	if r := ValidateMinParticipants("13", 12); r.OK() || r.Msg != "❌ Укажите число от 2 до 12:" {
		t.Fatalf("min above max accepted: %+v", r)
	}
	if r := ValidateMinParticipants("2", 12); !r.OK() {
		t.Fatalf("min 2 rejected: %+v", r)
	}
	if r := ValidateNumber("0", 1, 1000); r.OK() {
		t.Fatalf("ValidateNumber accepted 0")
	}
}

func TestParseParticipantsRange(t *testing.T) {
	cases := []struct {
		in       string
		min, max int
		ok       bool
	}{
		{"5-10", 5, 10, true},
		{"10", 5, 10, true},
		{"3", 2, 3, true},
		{"1-10", 0, 0, false},
		{"11-10", 0, 0, false},
		{"5-200", 0, 0, false},
		{"1", 0, 0, false},
		{"a-b", 0, 0, false},
	}
	for _, c := range cases {
		r := ParseParticipantsRange(c.in)
		if r.OK() != c.ok {
			t.Fatalf("ParseParticipantsRange(%q) ok = %v, msg %q", c.in, r.OK(), r.Msg)
		}
		if c.ok && (r.Value.Min != c.min || r.Value.Max != c.max) {
			t.Fatalf("ParseParticipantsRange(%q) = %+v", c.in, r.Value)
		}
	}
}

func TestTextValidators(t *testing.T) {
	if r := ValidateCost("-5"); r.OK() {
		t.Fatalf("negative cost accepted")
	}
	if r := ValidateCost("12,5"); !r.OK() || r.Value != 12.5 {
		t.Fatalf("decimal comma cost = %+v", r)
	}
	if r := ValidateLocationName("ab"); r.OK() {
		t.Fatalf("two-letter location accepted")
	}
	if r := ValidateMapURL("-"); !r.OK() || r.Value != "" {
		t.Fatalf("dash map url = %+v", r)
	}
	if r := ValidateMapURL("maps.google.com"); r.Msg != MsgURLScheme {
		t.Fatalf("schemeless url msg = %q", r.Msg)
	}
	if r := ValidateLocationTitle("A", 2); r.Msg != MsgTitleShort {
		t.Fatalf("short title msg = %q", r.Msg)
	}
	if r := ValidateLocationTitle("A", 1); !r.OK() {
		t.Fatalf("rename to one letter rejected")
	}
	long := make([]rune, 501)
	for i := range long {
		long[i] = 'я'
	}
	if r := ValidateNotes(string(long)); r.Msg != MsgNotesLong {
		t.Fatalf("long notes msg = %q", r.Msg)
	}
}

func TestGameQuickEntry(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	res := ParseGameQuickEntry("15.02 19:00 / 5-10 / 500 / note / Arena", now)
	if !res.OK() {
		t.Fatalf("quick entry rejected: %s", res.Msg)
	}
	q := res.Value
	if !q.Date.Equal(time.Date(2026, 2, 15, 19, 0, 0, 0, time.UTC)) || q.Min != 5 || q.Max != 10 ||
		q.Cost != 500 || q.Notes != "note" || q.Location != "Arena" {
		t.Fatalf("quick entry = %+v", q)
	}

	res = ParseGameQuickEntry("15.02 19:00 / 12 / - / -", now)
	if !res.OK() || res.Value.HasLocation() || res.Value.Min != 6 || res.Value.Cost != 0 {
		t.Fatalf("quick entry without location = %+v (%s)", res.Value, res.Msg)
	}

	if r := ParseGameQuickEntry("15.02 19:00 / many", now); r.OK() {
		t.Fatalf("bad participants accepted")
	}
	if r := ParseGameQuickEntry("15.02 19:00 / 5-10 / free", now); r.Msg != msgQuickCost {
		t.Fatalf("bad cost msg = %q", r.Msg)
	}
}

func TestTrainingQuickEntry(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	res := ParseTrainingQuickEntry("10.02 18:00 / 5 / - / - / Приходите пораньше / Зал", now)
	if !res.OK() {
		t.Fatalf("training quick entry rejected: %s", res.Msg)
	}
	q := res.Value
	if q.Min != 5 || q.Max != models.UnlimitedParticipants || q.Notes != "Приходите пораньше" || q.Location != "Зал" {
		t.Fatalf("training quick entry = %+v", q)
	}
	if r := ParseTrainingQuickEntry("10.02 18:00 / 8 / 6", now); r.OK() {
		t.Fatalf("min above max accepted")
	}
	if r := ParseTrainingQuickEntry("10.02 18:00 / 8 / 999", now); r.OK() {
		t.Fatalf("capacity colliding with unlimited accepted: %+v", r.Value)
	}
	if r := ParseTrainingQuickEntry("10.02 18:00 / 8 / 998", now); !r.OK() || r.Value.Max != 998 {
		t.Fatalf("largest explicit capacity rejected: %s", r.Msg)
	}
}
