package levels

import "math"

// Volume is the liters breakdown of a tank at a given level.
type Volume struct {
	Capacity        float64
	Current         float64
	ToFull          float64
	LitersAvailable float64
}

// ComputeVolume derives tank volumes from a percentage and a capacity.
// LitersAvailable rounds the consumed share up and is not derived from Current.
func ComputeVolume(percent, capacity *float64) *Volume {
	if percent == nil || capacity == nil {
		return nil
	}
	ratio := *percent / 100
	tank := *capacity
	consumed := ratio * tank

	return &Volume{
		Capacity:        tank,
		Current:         round1(consumed),
		ToFull:          math.Max(0, round1(tank-consumed)),
		LitersAvailable: tank - math.Ceil(consumed),
	}
}

// Autonomy scales the rated autonomy (hours at a full tank) by the level.
func Autonomy(percent, ratedHours *float64) *float64 {
	if percent == nil || ratedHours == nil {
		return nil
	}
	hours := round1(*percent / 100 * *ratedHours)
	return &hours
}
