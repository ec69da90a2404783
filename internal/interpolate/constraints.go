package interpolate

import (
	"math"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// Nighttime hours for constraint purposes: generation is forced to zero at
// or before 05:00 and at or after 19:00.
const (
	nightEndHour   = 5
	nightStartHour = 19
)

// ApplySolarConstraints post-processes interpolated power columns in place:
// nighttime values go to zero, negatives are clipped, and per-column limits
// scaled by the efficiency cap bound the output. The operation is
// idempotent, so re-applying after a second interpolation pass is safe.
func ApplySolarConstraints(frame *timeseries.Frame, columns []string, cfg recommend.SolarConstraints) {
	for _, col := range columns {
		vals := frame.Column(col)
		if vals == nil {
			continue
		}

		limit := math.Inf(1)
		if max, ok := cfg.MaxPowerLimits[col]; ok && max > 0 {
			limit = max
			if cfg.MaxEfficiency > 0 {
				limit *= cfg.MaxEfficiency
			}
		}

		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			hour := frame.Times[i].Hour()
			if cfg.NighttimeZero && (hour <= nightEndHour || hour >= nightStartHour) {
				vals[i] = 0
				continue
			}
			if cfg.NegativeClipping && v < 0 {
				v = 0
			}
			if v > limit {
				v = limit
			}
			vals[i] = v
		}
	}
}
