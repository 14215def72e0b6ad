package agent

import "github.com/roadsense/telemetry-hub/internal/models"

// Road state labels.
const (
	RoadStateSmooth  = "smooth"
	RoadStateBumpy   = "bumpy"
	RoadStatePothole = "pothole"
)

// Classifier assigns a road state label to a single aggregated reading. The
// pipeline treats it as opaque; any function with this shape can be plugged
// into the agent.
type Classifier func(models.AgentData) string

// Thresholds on vertical acceleration deviation, in raw sensor units where
// 16384 is one g.
const (
	restingZ         = 16384
	bumpyDeviation   = 1000
	potholeDeviation = 3000
)

// ClassifyByVerticalAcceleration labels a reading by how far the vertical
// axis deviates from rest.
func ClassifyByVerticalAcceleration(data models.AgentData) string {
	deviation := data.Accelerometer.Z - restingZ
	if deviation < 0 {
		deviation = -deviation
	}

	switch {
	case deviation >= potholeDeviation:
		return RoadStatePothole
	case deviation >= bumpyDeviation:
		return RoadStateBumpy
	default:
		return RoadStateSmooth
	}
}
