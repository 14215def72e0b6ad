package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/roadsense/telemetry-hub/internal/broker"
	"github.com/roadsense/telemetry-hub/internal/models"
	"github.com/roadsense/telemetry-hub/internal/repository"
)

// ErrInvalidRecord marks a record that failed shape validation. Batches
// containing one are rejected whole, before any write.
var ErrInvalidRecord = errors.New("invalid record")

// RecordService implements the ingestion pipeline: validate the whole batch,
// store it atomically, then broadcast the stored rows to live subscribers.
type RecordService struct {
	repo       *repository.RecordRepository
	dispatcher *broker.Dispatcher
}

// NewRecordService creates a new record service.
func NewRecordService(repo *repository.RecordRepository, dispatcher *broker.Dispatcher) *RecordService {
	return &RecordService{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// CreateRecords validates and stores a batch, then fans the stored rows out
// to subscribers. Ingestion success is determined solely by the store write:
// the batch is dispatched only after the transaction has committed, and
// delivery failures never affect the returned error.
func (s *RecordService) CreateRecords(ctx context.Context, batch []models.ProcessedAgentData) ([]models.ProcessedAgentDataInDB, error) {
	for i, item := range batch {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidRecord, i, err)
		}
	}

	stored, err := s.repo.InsertBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}

	s.dispatcher.Dispatch(stored)

	return stored, nil
}

// GetRecord retrieves a single stored record by id.
func (s *RecordService) GetRecord(ctx context.Context, id int64) (*models.ProcessedAgentDataInDB, error) {
	return s.repo.GetByID(ctx, id)
}

// ListRecords returns all stored records ordered by id.
func (s *RecordService) ListRecords(ctx context.Context) ([]models.ProcessedAgentDataInDB, error) {
	return s.repo.List(ctx)
}

// UpdateRecord validates the replacement record and applies it, returning
// the post-update row. No broadcast side effect.
func (s *RecordService) UpdateRecord(ctx context.Context, id int64, item models.ProcessedAgentData) (*models.ProcessedAgentDataInDB, error) {
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return s.repo.Update(ctx, id, item)
}

// DeleteRecord removes a stored record by id.
func (s *RecordService) DeleteRecord(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
