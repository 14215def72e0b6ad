package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roadsense/telemetry-hub/internal/models"
)

func TestClassifyByVerticalAcceleration(t *testing.T) {
	tests := []struct {
		name string
		z    int
		want string
	}{
		{"at rest", 16384, RoadStateSmooth},
		{"slight vibration", 16900, RoadStateSmooth},
		{"bumpy upward", 16384 + bumpyDeviation, RoadStateBumpy},
		{"bumpy downward", 16384 - 2000, RoadStateBumpy},
		{"pothole", 16384 + potholeDeviation, RoadStatePothole},
		{"hard impact", 2000, RoadStatePothole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := models.AgentData{
				Accelerometer: models.AccelerometerData{Z: tt.z},
			}
			assert.Equal(t, tt.want, ClassifyByVerticalAcceleration(data))
		})
	}
}
