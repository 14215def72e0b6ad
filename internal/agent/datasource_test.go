package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestDatasource(t *testing.T, accCSV, gpsCSV string) *FileDatasource {
	t.Helper()
	dir := t.TempDir()
	d := NewFileDatasource(
		writeFile(t, dir, "accelerometer.csv", accCSV),
		writeFile(t, dir, "gps.csv", gpsCSV),
	)
	return d
}

func TestDatasourceMapsGpsWireOrder(t *testing.T) {
	// The GPS file is longitude-first on the wire; the reading must come
	// out with each axis under its own name.
	d := newTestDatasource(t,
		"x,y,z\n100,200,300\n",
		"longitude,latitude\n30.52,50.45\n",
	)
	require.NoError(t, d.Start())

	data, err := d.Read()
	require.NoError(t, err)
	assert.Equal(t, 30.52, data.GPS.Longitude)
	assert.Equal(t, 50.45, data.GPS.Latitude)
	assert.Equal(t, 100, data.Accelerometer.X)
	assert.Equal(t, 200, data.Accelerometer.Y)
	assert.Equal(t, 300, data.Accelerometer.Z)
}

func TestDatasourceWrapsAroundIndependently(t *testing.T) {
	d := newTestDatasource(t,
		"x,y,z\n1,1,1\n2,2,2\n3,3,3\n",
		"longitude,latitude\n10.0,20.0\n11.0,21.0\n",
	)
	require.NoError(t, d.Start())

	var xs []int
	var lons []float64
	for i := 0; i < 6; i++ {
		data, err := d.Read()
		require.NoError(t, err)
		xs = append(xs, data.Accelerometer.X)
		lons = append(lons, data.GPS.Longitude)
	}

	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, xs)
	assert.Equal(t, []float64{10, 11, 10, 11, 10, 11}, lons)
}

func TestDatasourceAssignsCaptureTimestamp(t *testing.T) {
	d := newTestDatasource(t,
		"x,y,z\n1,2,3\n",
		"longitude,latitude\n10.0,20.0\n",
	)
	require.NoError(t, d.Start())

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	data, err := d.Read()
	require.NoError(t, err)
	assert.Equal(t, fixed, data.Timestamp)
}

func TestDatasourceErrors(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		d := NewFileDatasource("missing.csv", "missing.csv")
		_, err := d.Read()
		assert.Error(t, err)
	})

	t.Run("missing files", func(t *testing.T) {
		d := NewFileDatasource("no-such.csv", "no-such-either.csv")
		assert.Error(t, d.Start())
	})

	t.Run("bad values", func(t *testing.T) {
		d := newTestDatasource(t,
			"x,y,z\nnot,a,number\n",
			"longitude,latitude\n10.0,20.0\n",
		)
		assert.Error(t, d.Start())
	})

	t.Run("headers only", func(t *testing.T) {
		d := newTestDatasource(t,
			"x,y,z\n",
			"longitude,latitude\n",
		)
		assert.Error(t, d.Start())
	})
}
