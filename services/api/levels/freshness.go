package levels

import (
	"fmt"
	"strings"
	"time"
)

// OnlineWindow is how old the last update may be for an asset to count as online.
const OnlineWindow = 2 * time.Minute

const (
	displayLayout = "02/01/2006 - 15:04"
	isoLayout     = "2006-01-02T15:04:05.999999-07:00"
)

// DefaultZone is the fixed civil zone (UTC-3) used for display and for
// timestamps recorded without an offset.
var DefaultZone = time.FixedZone("UTC-3", -3*60*60)

var offsetLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
	"2006-01-02T15:04:05-07",
	"2006-01-02 15:04:05-07",
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Freshness describes how recent an asset's last update is.
type Freshness struct {
	Online         bool
	Label          string
	ElapsedMinutes *float64
	ElapsedDisplay *string
	Display        *string
	ISO            *string
}

// ParseTimestamp reads a last-update value. Strings without an offset are
// taken to be civil time in zone. Returns nil when v cannot be parsed.
func ParseTimestamp(v any, zone *time.Location) *time.Time {
	if zone == nil {
		zone = DefaultZone
	}
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return &val
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		t := *val
		return &t
	case *string:
		if val == nil {
			return nil
		}
		return parseTimestampString(*val, zone)
	case string:
		return parseTimestampString(val, zone)
	}
	return nil
}

func parseTimestampString(text string, zone *time.Location) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.HasSuffix(text, "Z") {
		text = strings.TrimSuffix(text, "Z") + "+00:00"
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, text, zone); err == nil {
			return &t
		}
	}
	return nil
}

// EvaluateFreshness compares ts against now. A nil ts is always offline.
func EvaluateFreshness(ts *time.Time, now time.Time, zone *time.Location) Freshness {
	f := Freshness{Label: onlineLabel(false)}
	if ts == nil {
		return f
	}
	elapsed := now.Sub(*ts)
	f.Online = elapsed <= OnlineWindow
	f.Label = onlineLabel(f.Online)
	minutes := round1(elapsed.Seconds() / 60)
	f.ElapsedMinutes = &minutes
	display := formatMinutes(minutes)
	f.ElapsedDisplay = &display
	f.Display = FormatCivil(ts, zone)
	iso := ts.Format(isoLayout)
	f.ISO = &iso
	return f
}

// FormatCivil renders t as "DD/MM/YYYY - HH:MM" in the civil zone.
func FormatCivil(t *time.Time, zone *time.Location) *string {
	if t == nil {
		return nil
	}
	if zone == nil {
		zone = DefaultZone
	}
	s := stripUTC(t.In(zone).Format(displayLayout))
	return &s
}

// stripUTC drops "UTC" labels left over in legacy display strings.
func stripUTC(s string) string {
	s = strings.ReplaceAll(s, " UTC", "")
	s = strings.ReplaceAll(s, "UTC", "")
	return strings.TrimSpace(s)
}

func formatMinutes(minutes float64) string {
	return fmt.Sprintf("%.1f min", minutes)
}

func formatHours(hours float64) string {
	return fmt.Sprintf("%.1f h", hours)
}
