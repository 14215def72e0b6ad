package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roadsense/telemetry-hub/internal/database"
	"github.com/roadsense/telemetry-hub/internal/models"
)

// ErrNotFound is returned when a referenced record id does not exist. It is
// an expected outcome for reads, updates and deletes, distinguishable from
// storage faults via errors.Is.
var ErrNotFound = errors.New("record not found")

// Timestamps are persisted as RFC 3339 text so the same scan path works on
// both sqlite and postgres.
const timestampLayout = time.RFC3339Nano

// RecordRepository handles database operations for processed agent data.
type RecordRepository struct {
	db     *sql.DB
	driver string
}

// NewRecordRepository creates a new record repository. The driver name is
// needed to rebind query placeholders for the active engine.
func NewRecordRepository(db *sql.DB, driver string) *RecordRepository {
	return &RecordRepository{db: db, driver: driver}
}

// InsertBatch inserts all records as a single atomic unit. Either every row
// becomes visible or none does: any failure mid-batch rolls the whole
// transaction back. Each row receives its own store-assigned id.
func (r *RecordRepository) InsertBatch(ctx context.Context, batch []models.ProcessedAgentData) ([]models.ProcessedAgentDataInDB, error) {
	stored := make([]models.ProcessedAgentDataInDB, 0, len(batch))

	query := database.Rebind(r.driver, `INSERT INTO processed_agent_data
		(road_state, x, y, z, latitude, longitude, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, item := range batch {
			agent := item.AgentData
			var id int64
			err := stmt.QueryRowContext(ctx,
				item.RoadState,
				agent.Accelerometer.X,
				agent.Accelerometer.Y,
				agent.Accelerometer.Z,
				agent.GPS.Latitude,
				agent.GPS.Longitude,
				agent.Timestamp.UTC().Format(timestampLayout),
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
			stored = append(stored, models.Flatten(id, item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// GetByID retrieves a single record by id.
func (r *RecordRepository) GetByID(ctx context.Context, id int64) (*models.ProcessedAgentDataInDB, error) {
	query := database.Rebind(r.driver, `SELECT id, road_state, x, y, z, latitude, longitude, timestamp
		FROM processed_agent_data WHERE id = ?`)

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// List returns a snapshot of all records ordered by id.
func (r *RecordRepository) List(ctx context.Context) ([]models.ProcessedAgentDataInDB, error) {
	query := `SELECT id, road_state, x, y, z, latitude, longitude, timestamp
		FROM processed_agent_data ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]models.ProcessedAgentDataInDB, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Update replaces all flattened fields of a record except its id and returns
// the post-update row.
func (r *RecordRepository) Update(ctx context.Context, id int64, item models.ProcessedAgentData) (*models.ProcessedAgentDataInDB, error) {
	query := database.Rebind(r.driver, `UPDATE processed_agent_data
		SET road_state = ?, x = ?, y = ?, z = ?, latitude = ?, longitude = ?, timestamp = ?
		WHERE id = ?`)

	agent := item.AgentData
	result, err := r.db.ExecContext(ctx, query,
		item.RoadState,
		agent.Accelerometer.X,
		agent.Accelerometer.Y,
		agent.Accelerometer.Z,
		agent.GPS.Latitude,
		agent.GPS.Longitude,
		agent.Timestamp.UTC().Format(timestampLayout),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	updated := models.Flatten(id, item)
	return &updated, nil
}

// Delete removes a record by id.
func (r *RecordRepository) Delete(ctx context.Context, id int64) error {
	query := database.Rebind(r.driver, "DELETE FROM processed_agent_data WHERE id = ?")

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*models.ProcessedAgentDataInDB, error) {
	var record models.ProcessedAgentDataInDB
	var ts string
	err := s.Scan(
		&record.ID, &record.RoadState,
		&record.X, &record.Y, &record.Z,
		&record.Latitude, &record.Longitude,
		&ts,
	)
	if err != nil {
		return nil, err
	}

	record.Timestamp, err = time.Parse(timestampLayout, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
	}
	return &record, nil
}
