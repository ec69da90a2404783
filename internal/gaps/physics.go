package gaps

import (
	"math"

	"github.com/AsobaCloud/platform/internal/timeseries"
)

// PhysicsViolations counts rows whose readings contradict solar physics.
// They flag sensor or logging faults that gap analysis alone cannot see.
type PhysicsViolations struct {
	NighttimeDataPresent  int `json:"nighttime_data_present"`
	DaytimeZeroUnexpected int `json:"daytime_zero_unexpected"`
	PowerExceedsCapacity  int `json:"power_exceeds_capacity"`
	NegativePower         int `json:"negative_power"`
	TotalViolations       int `json:"total_violations"`
}

const (
	// Nighttime power above this level is treated as a sensor artifact
	// rather than noise.
	nighttimeNoiseFloor = 10.0
	// Assumed per-inverter capacity ceiling in watts.
	capacityCeiling = 10000.0
)

// ScanPhysicsViolations checks every row of the frame against the solar
// constraints: no meaningful generation at night, no all-zero readings in
// the 9-15h core daytime window, no negative power, no readings beyond
// plausible inverter capacity.
func ScanPhysicsViolations(frame *timeseries.Frame, powerColumns []string) PhysicsViolations {
	var v PhysicsViolations

	for i, t := range frame.Times {
		hour := t.Hour()

		var vals []float64
		for _, col := range powerColumns {
			x := frame.Value(i, col)
			if !math.IsNaN(x) {
				vals = append(vals, x)
			}
		}
		if len(vals) == 0 {
			continue
		}

		if hour <= 5 || hour >= 19 {
			for _, x := range vals {
				if x > nighttimeNoiseFloor {
					v.NighttimeDataPresent++
					break
				}
			}
		}

		if hour >= 9 && hour <= 15 {
			allZero := true
			for _, x := range vals {
				if x != 0 {
					allZero = false
					break
				}
			}
			if allZero {
				v.DaytimeZeroUnexpected++
			}
		}

		for _, x := range vals {
			if x < 0 {
				v.NegativePower++
				break
			}
		}
		for _, x := range vals {
			if x > capacityCeiling {
				v.PowerExceedsCapacity++
				break
			}
		}
	}

	v.TotalViolations = v.NighttimeDataPresent + v.DaytimeZeroUnexpected +
		v.PowerExceedsCapacity + v.NegativePower
	return v
}
