package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/geo/s2"
)

// AccelerometerData is a single accelerometer sample. Raw axis values from
// the sensor, no unit conversion applied.
type AccelerometerData struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// GpsData is a single GPS fix. Longitude and latitude are always carried as
// named fields; the only positional representation in the system is the
// agent's CSV input, which is mapped explicitly in the datasource.
type GpsData struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Validate checks that the coordinates describe a real point on the globe.
func (g GpsData) Validate() error {
	if !s2.LatLngFromDegrees(g.Latitude, g.Longitude).IsValid() {
		return fmt.Errorf("invalid gps coordinates: latitude=%g longitude=%g", g.Latitude, g.Longitude)
	}
	return nil
}

// AgentData is one aggregated reading produced by the edge agent. The
// timestamp is assigned at capture time, not by the store.
type AgentData struct {
	Accelerometer AccelerometerData `json:"accelerometer"`
	GPS           GpsData           `json:"gps"`
	Timestamp     time.Time         `json:"timestamp"`
}

// ProcessedAgentData is a classified reading, the unit accepted by the
// ingestion endpoint (in batches).
type ProcessedAgentData struct {
	RoadState string    `json:"road_state"`
	AgentData AgentData `json:"agent_data"`
}

// Validate shape-checks a classified record before it reaches the store.
func (p ProcessedAgentData) Validate() error {
	if p.RoadState == "" {
		return errors.New("road_state is required")
	}
	if p.AgentData.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if err := p.AgentData.GPS.Validate(); err != nil {
		return err
	}
	return nil
}
