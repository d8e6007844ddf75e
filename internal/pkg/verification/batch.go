package verification

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/verifox/VeriFox/internal/pkg/webhook"
)

// BatchEntryResult is the per-entry outcome inside a batch. Failed entries
// carry an error message instead of data.
type BatchEntryResult struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Data    *VerificationData `json:"data,omitempty"`
}

// BatchResult summarizes one batch run. Results are in input order.
type BatchResult struct {
	BatchID         string             `json:"batchId"`
	TotalRequested  int                `json:"totalRequested"`
	TotalProcessed  int                `json:"totalProcessed"`
	TotalSuccessful int                `json:"totalSuccessful"`
	TotalFailed     int                `json:"totalFailed"`
	Results         []BatchEntryResult `json:"results"`
	WebhookQueued   bool               `json:"webhookQueued"`
}

// VerifyBatch runs the single-verify pipeline over all entries with a
// bounded worker pool. One entry's refusal or failure never aborts its
// siblings. A single batch-completion webhook is enqueued after the last
// entry finishes.
func (s *Service) VerifyBatch(ctx context.Context, entries []Request, webhookURL, webhookSecret string) *BatchResult {
	batch := &BatchResult{
		BatchID:        uuid.New().String(),
		TotalRequested: len(entries),
		Results:        make([]BatchEntryResult, len(entries)),
	}

	workers := s.cfg.BatchConcurrency
	if workers <= 0 {
		workers = 3
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := s.Verify(ctx, entries[i])
				if err != nil {
					batch.Results[i] = BatchEntryResult{Error: err.Error()}
					continue
				}
				data := res.Data
				batch.Results[i] = BatchEntryResult{Success: true, Data: &data}
			}
		}()
	}
	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range batch.Results {
		batch.TotalProcessed++
		if r.Success {
			batch.TotalSuccessful++
		} else {
			batch.TotalFailed++
		}
	}

	if webhookURL != "" {
		_, queued := s.hooks.Enqueue(batch.BatchID, webhook.EventBatchCompleted, webhookURL, webhookSecret, batch)
		batch.WebhookQueued = queued
	}
	return batch
}
