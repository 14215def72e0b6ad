// Package agent implements the edge side of the pipeline: cyclic CSV replay
// of sensor readings, road state classification and batch forwarding to the
// hub's ingestion endpoint.
package agent

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/roadsense/telemetry-hub/internal/models"
)

// FileDatasource replays accelerometer and GPS readings from CSV files,
// pairing one row of each per read and wrapping around at the end. The GPS
// file carries longitude in the first column and latitude in the second;
// the mapping onto named fields happens here and nowhere else.
type FileDatasource struct {
	accelerometerPath string
	gpsPath           string

	accelerometer []models.AccelerometerData
	gps           []models.GpsData
	next          int

	now func() time.Time
}

// NewFileDatasource creates a datasource over the given CSV files. Start
// must be called before Read.
func NewFileDatasource(accelerometerPath, gpsPath string) *FileDatasource {
	return &FileDatasource{
		accelerometerPath: accelerometerPath,
		gpsPath:           gpsPath,
		now:               time.Now,
	}
}

// Start loads and parses both CSV files.
func (d *FileDatasource) Start() error {
	accelerometer, err := readCSV(d.accelerometerPath, 3, func(fields []string) (models.AccelerometerData, error) {
		var reading models.AccelerometerData
		var err error
		if reading.X, err = strconv.Atoi(fields[0]); err != nil {
			return reading, fmt.Errorf("bad x value %q: %w", fields[0], err)
		}
		if reading.Y, err = strconv.Atoi(fields[1]); err != nil {
			return reading, fmt.Errorf("bad y value %q: %w", fields[1], err)
		}
		if reading.Z, err = strconv.Atoi(fields[2]); err != nil {
			return reading, fmt.Errorf("bad z value %q: %w", fields[2], err)
		}
		return reading, nil
	})
	if err != nil {
		return fmt.Errorf("failed to load accelerometer data: %w", err)
	}

	// Wire order in the GPS file is longitude, latitude.
	gps, err := readCSV(d.gpsPath, 2, func(fields []string) (models.GpsData, error) {
		var reading models.GpsData
		var err error
		if reading.Longitude, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return reading, fmt.Errorf("bad longitude value %q: %w", fields[0], err)
		}
		if reading.Latitude, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return reading, fmt.Errorf("bad latitude value %q: %w", fields[1], err)
		}
		return reading, nil
	})
	if err != nil {
		return fmt.Errorf("failed to load gps data: %w", err)
	}

	if len(accelerometer) == 0 || len(gps) == 0 {
		return errors.New("datasource files contain no readings")
	}

	d.accelerometer = accelerometer
	d.gps = gps
	d.next = 0
	return nil
}

// Read returns the next aggregated reading, stamped at call time. Each file
// wraps around independently when exhausted.
func (d *FileDatasource) Read() (models.AgentData, error) {
	if d.accelerometer == nil || d.gps == nil {
		return models.AgentData{}, errors.New("datasource not started")
	}

	data := models.AgentData{
		Accelerometer: d.accelerometer[d.next%len(d.accelerometer)],
		GPS:           d.gps[d.next%len(d.gps)],
		Timestamp:     d.now(),
	}
	d.next++
	return data, nil
}

// readCSV parses all data rows of a headered CSV file.
func readCSV[T any](path string, fields int, parse func([]string) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = fields

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	// First row is the header.
	out := make([]T, 0, len(rows)-1)
	for i, row := range rows[1:] {
		value, err := parse(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		out = append(out, value)
	}
	return out, nil
}
