package levels

import (
	"encoding/json"
	"math"
	"testing"
)

func ptr(v float64) *float64 {
	return &v
}

func TestCoerceFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want *float64
	}{
		{"nil", nil, nil},
		{"float", 0.5, ptr(0.5)},
		{"int", 42, ptr(42)},
		{"int64", int64(-3), ptr(-3)},
		{"json number", json.Number("12.5"), ptr(12.5)},
		{"numeric string", " 73.25 ", ptr(73.25)},
		{"garbage string", "abc", nil},
		{"empty string", "", nil},
		{"nan string", "NaN", nil},
		{"bool", true, nil},
		{"map", map[string]any{"a": 1}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CoerceFloat(tc.in)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("CoerceFloat(%v) = %v, want %v", tc.in, got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("CoerceFloat(%v) = %v, want %v", tc.in, *got, *tc.want)
			}
		})
	}
}

func TestCoerceBool(t *testing.T) {
	truthy := []any{true, "true", "TRUE", " yes ", "Y", "t", "1", 1, 1.0, int64(1)}
	for _, v := range truthy {
		if !CoerceBool(v) {
			t.Errorf("CoerceBool(%#v) = false, want true", v)
		}
	}
	falsy := []any{nil, false, "false", "no", "2", "", 0, 2, 0.5, []string{"true"}, map[string]any{}}
	for _, v := range falsy {
		if CoerceBool(v) {
			t.Errorf("CoerceBool(%#v) = true, want false", v)
		}
	}
}

func TestCoerceMapping(t *testing.T) {
	direct := map[string]any{"tanque": 500.0}
	if got := CoerceMapping(direct); got["tanque"] != 500.0 {
		t.Fatalf("mapping passthrough lost data: %v", got)
	}
	if got := CoerceMapping(`{"autonomia": 40}`); got["autonomia"] != 40.0 {
		t.Fatalf("json string not parsed: %v", got)
	}
	if got := CoerceMapping([]byte(`{"cidade":"Lapa"}`)); got["cidade"] != "Lapa" {
		t.Fatalf("json bytes not parsed: %v", got)
	}
	for _, bad := range []any{`[1,2]`, `{broken`, `"text"`, 12, nil} {
		if got := CoerceMapping(bad); got == nil || len(got) != 0 {
			t.Errorf("CoerceMapping(%#v) = %v, want empty map", bad, got)
		}
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := []struct {
		in   any
		want *float64
	}{
		{0.0, ptr(0)},
		{0.25, ptr(25)},
		{0.855, ptr(85.5)},
		{1, ptr(100)},
		{"0.5", ptr(50)},
		{1.5, ptr(1.5)},
		{73, ptr(73)},
		{100, ptr(100)},
		{250, ptr(100)},
		{-5, ptr(0)},
		{-0.5, ptr(0)},
		{nil, nil},
		{"n/a", nil},
	}
	for _, tc := range cases {
		got := NormalizeLevel(tc.in)
		if (got == nil) != (tc.want == nil) {
			t.Fatalf("NormalizeLevel(%v) = %v, want %v", tc.in, got, tc.want)
		}
		if got != nil && math.Abs(*got-*tc.want) > 1e-9 {
			t.Errorf("NormalizeLevel(%v) = %v, want %v", tc.in, *got, *tc.want)
		}
	}
}

func TestNormalizeLevelRatioProperty(t *testing.T) {
	for i := 0; i <= 100; i++ {
		raw := float64(i) / 100
		got := NormalizeLevel(raw)
		if got == nil || *got != raw*100 {
			t.Fatalf("NormalizeLevel(%v) = %v, want %v", raw, got, raw*100)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		in   *float64
		want Tier
	}{
		{ptr(100), TierSafe},
		{ptr(70), TierSafe},
		{ptr(69.999), TierModerate},
		{ptr(69.9), TierModerate},
		{ptr(40), TierModerate},
		{ptr(39.9), TierAlert},
		{ptr(20), TierAlert},
		{ptr(19.9), TierCritical},
		{ptr(0), TierCritical},
		{nil, TierUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", deref(tc.in), got, tc.want)
		}
	}
}

func TestCriticalFocusIsIndependentOfTier(t *testing.T) {
	p := ptr(22)
	if Classify(p) != TierAlert {
		t.Fatalf("22%% should be alert, got %s", Classify(p))
	}
	if !CriticalFocus(p) {
		t.Fatal("22% should be critical focus")
	}
	if CriticalFocus(ptr(25)) {
		t.Fatal("25% should not be critical focus")
	}
	if CriticalFocus(nil) {
		t.Fatal("absent level should not be critical focus")
	}
	if got := LevelColor(p); got != TierCritical.Color() {
		t.Fatalf("critical focus colour = %s, want %s", got, TierCritical.Color())
	}
	if got := LevelColor(ptr(30)); got != TierAlert.Color() {
		t.Fatalf("alert colour = %s, want %s", got, TierAlert.Color())
	}
}

func TestLevelDisplay(t *testing.T) {
	if got := LevelDisplay(ptr(85.5)); got != "86%" {
		t.Fatalf("LevelDisplay(85.5) = %q", got)
	}
	if got := LevelDisplay(nil); got != "—" {
		t.Fatalf("LevelDisplay(nil) = %q", got)
	}
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
