package models

import "time"

// ProcessedAgentDataInDB is the persisted, flattened projection of a
// ProcessedAgentData. The id is assigned by the store, is unique and is never
// reused after deletion.
type ProcessedAgentDataInDB struct {
	ID        int64     `json:"id"`
	RoadState string    `json:"road_state"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Z         int       `json:"z"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Flatten projects a classified record onto its stored representation using
// the given store-assigned id. Timestamps are normalised to UTC.
func Flatten(id int64, p ProcessedAgentData) ProcessedAgentDataInDB {
	return ProcessedAgentDataInDB{
		ID:        id,
		RoadState: p.RoadState,
		X:         p.AgentData.Accelerometer.X,
		Y:         p.AgentData.Accelerometer.Y,
		Z:         p.AgentData.Accelerometer.Z,
		Latitude:  p.AgentData.GPS.Latitude,
		Longitude: p.AgentData.GPS.Longitude,
		Timestamp: p.AgentData.Timestamp.UTC(),
	}
}
