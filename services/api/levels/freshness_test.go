package levels

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want time.Time
	}{
		{"zulu", "2026-02-15T22:50:00Z", time.Date(2026, 2, 15, 22, 50, 0, 0, time.UTC)},
		{"offset", "2026-02-15T19:50:00-03:00", time.Date(2026, 2, 15, 22, 50, 0, 0, time.UTC)},
		{"fractional", "2026-02-15T22:50:00.123456+00:00", time.Date(2026, 2, 15, 22, 50, 0, 123456000, time.UTC)},
		{"postgres text", "2026-02-15 22:50:00+00", time.Date(2026, 2, 15, 22, 50, 0, 0, time.UTC)},
		{"unlabeled is civil", "2026-02-15T19:50:00", time.Date(2026, 2, 15, 22, 50, 0, 0, time.UTC)},
		{"unlabeled space", "2026-02-15 19:50:00", time.Date(2026, 2, 15, 22, 50, 0, 0, time.UTC)},
		{"time value", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseTimestamp(tc.in, DefaultZone)
			if got == nil {
				t.Fatalf("ParseTimestamp(%v) = nil", tc.in)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseTimestamp(%v) = %s, want %s", tc.in, got.UTC(), tc.want)
			}
		})
	}

	for _, bad := range []any{nil, "", "yesterday", 12345, "15/02/2026"} {
		if got := ParseTimestamp(bad, DefaultZone); got != nil {
			t.Errorf("ParseTimestamp(%#v) = %s, want nil", bad, got)
		}
	}
}

func TestParseTimestampUsesInjectedZone(t *testing.T) {
	zone := time.FixedZone("UTC+1", 60*60)
	got := ParseTimestamp("2026-02-15T19:50:00", zone)
	want := time.Date(2026, 2, 15, 18, 50, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %s", got, want)
	}
}

func TestEvaluateFreshnessOnlineBoundary(t *testing.T) {
	now := time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)

	exact := now.Add(-2 * time.Minute)
	f := EvaluateFreshness(&exact, now, DefaultZone)
	if !f.Online || f.Label != "online" {
		t.Fatalf("2 minutes old should be online: %+v", f)
	}
	if f.ElapsedMinutes == nil || *f.ElapsedMinutes != 2.0 {
		t.Fatalf("elapsed minutes = %v", f.ElapsedMinutes)
	}

	late := now.Add(-2*time.Minute - time.Second)
	f = EvaluateFreshness(&late, now, DefaultZone)
	if f.Online || f.Label != "offline" {
		t.Fatalf("2m01s old should be offline: %+v", f)
	}
}

func TestEvaluateFreshnessFormatting(t *testing.T) {
	now := time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)
	ts := time.Date(2026, 2, 15, 22, 50, 0, 0, time.UTC)

	f := EvaluateFreshness(&ts, now, DefaultZone)
	if f.Display == nil || *f.Display != "15/02/2026 - 19:50" {
		t.Fatalf("display = %v", f.Display)
	}
	if f.ElapsedDisplay == nil || *f.ElapsedDisplay != "10.0 min" {
		t.Fatalf("elapsed display = %v", f.ElapsedDisplay)
	}
	if f.ISO == nil || *f.ISO != "2026-02-15T22:50:00+00:00" {
		t.Fatalf("iso = %v", f.ISO)
	}
}

func TestEvaluateFreshnessElapsedTie(t *testing.T) {
	now := time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)
	ts := now.Add(-15 * time.Second)

	f := EvaluateFreshness(&ts, now, DefaultZone)
	if f.ElapsedMinutes == nil || *f.ElapsedMinutes != 0.2 || *f.ElapsedDisplay != "0.2 min" {
		t.Fatalf("elapsed = %v %v", f.ElapsedMinutes, f.ElapsedDisplay)
	}
}

func TestEvaluateFreshnessWithoutTimestamp(t *testing.T) {
	f := EvaluateFreshness(nil, time.Now(), DefaultZone)
	if f.Online || f.ElapsedMinutes != nil || f.Display != nil || f.Label != "offline" {
		t.Fatalf("missing timestamp should be offline with no elapsed: %+v", f)
	}
}

func TestStripUTC(t *testing.T) {
	if got := stripUTC("15/02/2026 19:50 UTC"); got != "15/02/2026 19:50" {
		t.Fatalf("stripUTC = %q", got)
	}
	if got := stripUTC("UTC15/02"); got != "15/02" {
		t.Fatalf("stripUTC = %q", got)
	}
}
