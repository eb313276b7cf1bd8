package week

import (
	"errors"
	"testing"
	"time"
)

var ict = time.FixedZone("UTC+7", 7*3600)

func newTestResolver() *Resolver { return NewResolver(ict, time.September, 1) }

func TestWeekOf_Table(t *testing.T) {
	r := newTestResolver()
	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"term_start_monday", time.Date(2025, 9, 1, 8, 0, 0, 0, ict), 1},
		{"first_sunday_late", time.Date(2025, 9, 7, 23, 59, 0, 0, ict), 1},
		{"second_monday", time.Date(2025, 9, 8, 0, 0, 0, 0, ict), 2},
		// 17:00 UTC Sunday is already Monday in UTC+7
		{"utc_crosses_midnight", time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC), 2},
		{"utc_before_midnight", time.Date(2025, 9, 7, 16, 59, 0, 0, time.UTC), 1},
		{"new_calendar_year", time.Date(2025, 12, 29, 10, 0, 0, 0, ict), 18},
		{"last_valid_week", time.Date(2026, 5, 3, 12, 0, 0, 0, ict), 35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.WeekOf(tc.at)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("WeekOf(%s) = %d, want %d", tc.at, got, tc.want)
			}
		})
	}
}

func TestWeekOf_OutOfRange(t *testing.T) {
	r := newTestResolver()
	for _, at := range []time.Time{
		time.Date(2026, 5, 4, 0, 0, 0, 0, ict),   // week 36
		time.Date(2025, 8, 31, 23, 0, 0, 0, ict), // summer, previous year
	} {
		w, err := r.WeekOf(at)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("WeekOf(%s) = %d, %v; want ErrOutOfRange", at, w, err)
		}
		if w >= 1 && w <= MaxWeek {
			t.Fatalf("computed week %d should be outside range", w)
		}
	}
}

func TestWeekOf_MonotonicAndResets(t *testing.T) {
	r := newTestResolver()
	prev := 0
	start := time.Date(2025, 9, 1, 12, 0, 0, 0, ict)
	end := time.Date(2026, 9, 1, 12, 0, 0, 0, ict)
	resets := 0
	for d := start; !d.After(end); d = d.Add(6 * time.Hour) {
		w, _ := r.WeekOf(d)
		if w < prev {
			if !d.Equal(end) && r.SchoolYear(d) == 2025 {
				t.Fatalf("week decreased at %s: %d -> %d", d, prev, w)
			}
			resets++
		}
		prev = w
	}
	if resets != 1 {
		t.Fatalf("expected exactly one reset at the new term, got %d", resets)
	}
}

func TestISOWeek(t *testing.T) {
	r := newTestResolver()
	// 2025-12-28 18:00 UTC is Monday 29 Dec in UTC+7 → ISO week 1 of 2026
	if got := r.ISOWeek(time.Date(2025, 12, 28, 18, 0, 0, 0, time.UTC)); got != 1 {
		t.Fatalf("ISOWeek = %d, want 1", got)
	}
}

func TestKeyAndBounds(t *testing.T) {
	r := newTestResolver()
	at := time.Date(2025, 10, 8, 15, 0, 0, 0, ict)
	key, err := r.Key(at)
	if err != nil {
		t.Fatal(err)
	}
	if key != "2025-W06" {
		t.Fatalf("key = %s", key)
	}
	from, to, err := r.Bounds(key)
	if err != nil {
		t.Fatal(err)
	}
	if !from.Equal(time.Date(2025, 10, 6, 0, 0, 0, 0, ict)) || !to.Equal(from.AddDate(0, 0, 7)) {
		t.Fatalf("bounds = %s .. %s", from, to)
	}
	if at.Before(from) || !at.Before(to) {
		t.Fatal("timestamp must fall inside its own week bounds")
	}
}

func TestParseKey(t *testing.T) {
	if _, _, err := ParseKey("2025-W6"); !errors.Is(err, ErrBadKey) {
		t.Fatalf("non-canonical key must fail, got %v", err)
	}
	if _, _, err := ParseKey("2025-W36"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("week 36 must be out of range, got %v", err)
	}
	sy, w, err := ParseKey("2024-W35")
	if err != nil || sy != 2024 || w != 35 {
		t.Fatalf("got %d %d %v", sy, w, err)
	}
}

func TestSchoolYearLabel(t *testing.T) {
	if got := SchoolYearLabel(2024); got != "2024–2025" {
		t.Fatalf("label = %q", got)
	}
}
