package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roadsense/telemetry-hub/internal/models"
)

const (
	defaultRetries = 3
	retryBackoff   = time.Second
	requestTimeout = 10 * time.Second
)

// StoreAPIAdapter forwards classified batches to the hub's ingestion
// endpoint. Transport errors and 5xx responses are retried a bounded number
// of times with backoff; 4xx responses are not, since resending the same
// malformed batch cannot succeed.
type StoreAPIAdapter struct {
	baseURL string
	client  *http.Client
	retries int
	log     *logrus.Logger
}

// NewStoreAPIAdapter creates an adapter posting to the given hub base URL.
func NewStoreAPIAdapter(baseURL string, log *logrus.Logger) *StoreAPIAdapter {
	return &StoreAPIAdapter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
		retries: defaultRetries,
		log:     log,
	}
}

// SaveData posts one batch to the hub. The whole batch succeeds or fails
// together, mirroring the ingestion endpoint's contract.
func (a *StoreAPIAdapter) SaveData(ctx context.Context, batch []models.ProcessedAgentData) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	url := a.baseURL + "/processed_agent_data/"

	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			a.log.WithField("attempt", attempt).Warn("retrying batch upload")
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			a.log.WithField("records", len(batch)).Debug("batch uploaded")
			return nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("store API returned %s", resp.Status)
			continue
		default:
			return fmt.Errorf("store API rejected batch: %s", resp.Status)
		}
	}

	return fmt.Errorf("failed to upload batch after %d attempts: %w", a.retries+1, lastErr)
}
