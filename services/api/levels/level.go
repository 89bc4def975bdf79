package levels

import (
	"fmt"
	"math"
)

// Tier is the discretised health of a level reading.
type Tier string

const (
	TierSafe     Tier = "safe"
	TierModerate Tier = "moderate"
	TierAlert    Tier = "alert"
	TierCritical Tier = "critical"
	TierUnknown  Tier = "unknown"
)

const (
	safeThreshold     = 70.0
	moderateThreshold = 40.0
	alertThreshold    = 20.0

	// criticalFocusThreshold is an early warning and sits above
	// the alert/critical boundary.
	criticalFocusThreshold = 25.0
)

var tierColors = map[Tier]string{
	TierSafe:     "#1ec592",
	TierModerate: "#f6c343",
	TierAlert:    "#f36405",
	TierCritical: "#ff0000",
	TierUnknown:  "#95a1b3",
}

// NormalizeLevel turns a raw reading into a percentage in [0, 100].
// Values in [0, 1] are ratios, so 1 means 100%.
func NormalizeLevel(raw any) *float64 {
	value := CoerceFloat(raw)
	if value == nil {
		return nil
	}
	pct := *value
	if pct >= 0 && pct <= 1 {
		pct *= 100
	}
	pct = math.Max(math.Min(pct, 100), 0)
	return &pct
}

// Classify maps a percentage to its tier. Lower bounds are inclusive.
func Classify(percent *float64) Tier {
	if percent == nil {
		return TierUnknown
	}
	switch p := *percent; {
	case p >= safeThreshold:
		return TierSafe
	case p >= moderateThreshold:
		return TierModerate
	case p >= alertThreshold:
		return TierAlert
	default:
		return TierCritical
	}
}

// CriticalFocus flags readings below 25%, independently of Classify.
func CriticalFocus(percent *float64) bool {
	return percent != nil && *percent < criticalFocusThreshold
}

// Color returns the display colour of a tier.
func (t Tier) Color() string {
	if c, ok := tierColors[t]; ok {
		return c
	}
	return tierColors[TierUnknown]
}

// LevelColor is the colour shown for a reading: critical-focus readings are
// painted critical whatever their tier.
func LevelColor(percent *float64) string {
	if CriticalFocus(percent) {
		return TierCritical.Color()
	}
	return Classify(percent).Color()
}

// LevelDisplay formats a percentage as "86%", or an em dash when absent.
func LevelDisplay(percent *float64) string {
	if percent == nil {
		return "—"
	}
	return fmt.Sprintf("%.0f%%", *percent)
}

// round1 rounds to one decimal, ties to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
