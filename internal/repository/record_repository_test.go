package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/roadsense/telemetry-hub/internal/database"
	"github.com/roadsense/telemetry-hub/internal/models"
)

func newTestRepository(t *testing.T) *RecordRepository {
	t.Helper()
	db, err := sql.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, database.DriverSQLite))
	return NewRecordRepository(db, database.DriverSQLite)
}

func testRecord(roadState string, z int) models.ProcessedAgentData {
	return models.ProcessedAgentData{
		RoadState: roadState,
		AgentData: models.AgentData{
			Accelerometer: models.AccelerometerData{X: 1, Y: 2, Z: z},
			GPS:           models.GpsData{Longitude: 30.52, Latitude: 50.45},
			Timestamp:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestInsertBatchAssignsUniqueIDs(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	batch := []models.ProcessedAgentData{
		testRecord("smooth", 16400),
		testRecord("bumpy", 18000),
		testRecord("pothole", 21000),
	}
	stored, err := repo.InsertBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	seen := make(map[int64]bool)
	for i, record := range stored {
		assert.False(t, seen[record.ID], "duplicate id %d", record.ID)
		seen[record.ID] = true
		assert.Equal(t, batch[i].RoadState, record.RoadState)
	}

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(stored, listed))
}

func TestInsertBatchAppendsToExistingRecords(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, []models.ProcessedAgentData{testRecord("smooth", 16400)})
	require.NoError(t, err)
	_, err = repo.InsertBatch(ctx, []models.ProcessedAgentData{testRecord("bumpy", 18000)})
	require.NoError(t, err)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Less(t, listed[0].ID, listed[1].ID)
}

func TestGetByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.InsertBatch(ctx, []models.ProcessedAgentData{testRecord("smooth", 16400)})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(stored[0], *got))

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesFieldsKeepsID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.InsertBatch(ctx, []models.ProcessedAgentData{testRecord("smooth", 16400)})
	require.NoError(t, err)
	id := stored[0].ID

	replacement := testRecord("pothole", 21000)
	updated, err := repo.Update(ctx, id, replacement)
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "pothole", updated.RoadState)
	assert.Equal(t, 21000, updated.Z)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(*updated, *got))
}

func TestUpdateMissingRecord(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Update(context.Background(), 42, testRecord("smooth", 16400))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.InsertBatch(ctx, []models.ProcessedAgentData{testRecord("smooth", 16400)})
	require.NoError(t, err)
	id := stored[0].ID

	require.NoError(t, repo.Delete(ctx, id))

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.InsertBatch(ctx, []models.ProcessedAgentData{testRecord("smooth", 16400)})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, first[0].ID))

	second, err := repo.InsertBatch(ctx, []models.ProcessedAgentData{testRecord("bumpy", 18000)})
	require.NoError(t, err)
	assert.Greater(t, second[0].ID, first[0].ID)
}

func TestTimestampRoundTripsInUTC(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	kyiv := time.FixedZone("EET", 2*3600)
	record := testRecord("smooth", 16400)
	record.AgentData.Timestamp = time.Date(2024, 6, 15, 12, 30, 45, 123456789, kyiv)

	stored, err := repo.InsertBatch(ctx, []models.ProcessedAgentData{record})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Timestamp.Equal(record.AgentData.Timestamp))
	assert.Equal(t, time.UTC, got.Timestamp.Location())
}
