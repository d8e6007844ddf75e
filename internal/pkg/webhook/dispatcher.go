package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/verifox/VeriFox/app/models"
	"github.com/verifox/VeriFox/app/repository"
)

const (
	// Redis keys for the delivery queue
	DeliveryQueueKey      = "webhook_queue"
	DeliveryProcessingKey = "webhook_processing"

	snippetLimit = 512
)

// Dispatcher delivers webhook payloads at-least-once: enqueue returns
// immediately, a redis-backed worker pool performs the HTTP POSTs with
// bounded retries, and Stop drains in-flight deliveries before returning.
type Dispatcher struct {
	client     *redis.Client
	httpClient *http.Client
	logs       repository.WebhookLogRepository

	workers  int
	attempts int
	backoff  []time.Duration

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewDispatcher creates a dispatcher. workers is the delivery pool size,
// attempts the per-delivery cap, backoff the delay before each attempt.
func NewDispatcher(client *redis.Client, logs repository.WebhookLogRepository, workers, attempts int, backoff []time.Duration, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 3
	}
	if attempts <= 0 {
		attempts = 3
	}
	return &Dispatcher{
		client:     client,
		httpClient: &http.Client{Timeout: timeout},
		logs:       logs,
		workers:    workers,
		attempts:   attempts,
		backoff:    backoff,
		stopCh:     make(chan struct{}),
	}
}

// Start starts the delivery workers.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}
	d.stopCh = make(chan struct{})
	d.running = true
	log.Infof("[Webhook] Starting %d delivery workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Stop signals the workers and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	log.Info("[Webhook] Stopping delivery workers...")
	close(d.stopCh)
	d.running = false
	d.mu.Unlock()

	d.wg.Wait()
	log.Info("[Webhook] All delivery workers stopped")
}

// Enqueue records a delivery and queues it for the workers. It never blocks
// on the target: when redis is unreachable the delivery runs on a tracked
// goroutine instead. The returned bool reports whether the delivery was
// accepted for dispatch.
func (d *Dispatcher) Enqueue(refID, event, targetURL, secret string, data interface{}) (string, bool) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	body, err := json.Marshal(Envelope{Event: event, Timestamp: timestamp, Data: data})
	if err != nil {
		log.Errorf("[Webhook] Failed to marshal payload for %s: %v", targetURL, err)
		return "", false
	}

	deliveryID := uuid.New().String()
	row := &models.WebhookDelivery{
		ID:             deliveryID,
		VerificationID: refID,
		Event:          event,
		WebhookURL:     targetURL,
		Payload:        string(body),
		Status:         models.DELIVERY_PENDING,
	}
	if err := d.logs.Create(context.Background(), row); err != nil {
		log.Errorf("[Webhook] Failed to log delivery %s: %v", deliveryID, err)
	}

	job := deliveryJob{
		DeliveryID: deliveryID,
		Event:      event,
		Timestamp:  timestamp,
		URL:        targetURL,
		Secret:     secret,
		Body:       body,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[Webhook] Failed to marshal job %s: %v", deliveryID, err)
		return "", false
	}

	if err := d.client.LPush(context.Background(), DeliveryQueueKey, payload).Err(); err != nil {
		log.Warnf("[Webhook] Queue unavailable, delivering %s inline: %v", deliveryID, err)
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(job)
		}()
	}
	return deliveryID, true
}

// worker pops jobs off the queue until the dispatcher stops. The current
// delivery always runs to completion before the worker exits.
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	log.Infof("[Webhook] Worker %d started", id)

	ctx := context.Background()
	for {
		select {
		case <-d.stopCh:
			log.Infof("[Webhook] Worker %d stopping", id)
			return
		default:
			raw, err := d.client.BRPopLPush(ctx, DeliveryQueueKey, DeliveryProcessingKey, time.Second).Result()
			if err != nil {
				if err != redis.Nil {
					log.Errorf("[Webhook] Worker %d: dequeue error: %v", id, err)
					time.Sleep(time.Second)
				}
				continue
			}

			var job deliveryJob
			if err := json.Unmarshal([]byte(raw), &job); err != nil {
				log.Errorf("[Webhook] Worker %d: invalid job payload: %v", id, err)
				d.client.LRem(ctx, DeliveryProcessingKey, 1, raw)
				continue
			}

			d.deliver(job)
			d.client.LRem(ctx, DeliveryProcessingKey, 1, raw)
		}
	}
}

// deliver runs the bounded retry sequence for one delivery and finalizes
// its log row. A 2xx response is success; a non-429 4xx is a permanent
// failure; 429, 5xx and network errors consume further attempts.
func (d *Dispatcher) deliver(job deliveryJob) {
	var (
		lastStatus  *int
		lastSnippet string
		lastErr     string
		attempted   int
	)

	for i := 0; i < d.attempts; i++ {
		if i < len(d.backoff) && d.backoff[i] > 0 {
			time.Sleep(d.backoff[i])
		}
		attempted = i + 1

		status, snippet, err := d.post(job)
		if err != nil {
			lastErr = err.Error()
			lastStatus = nil
			lastSnippet = ""
			log.Warnf("[Webhook] Delivery %s attempt %d failed: %v", job.DeliveryID, attempted, err)
			continue
		}

		lastErr = ""
		lastStatus = &status
		lastSnippet = snippet

		if status >= 200 && status < 300 {
			d.finalize(job.DeliveryID, models.DELIVERY_SUCCEEDED, lastStatus, lastSnippet, "", attempted)
			log.Infof("[Webhook] Delivery %s succeeded (status %d, attempt %d)", job.DeliveryID, status, attempted)
			return
		}
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			d.finalize(job.DeliveryID, models.DELIVERY_FAILED, lastStatus, lastSnippet, "", attempted)
			log.Warnf("[Webhook] Delivery %s rejected permanently (status %d)", job.DeliveryID, status)
			return
		}
		log.Warnf("[Webhook] Delivery %s attempt %d got status %d", job.DeliveryID, attempted, status)
	}

	d.finalize(job.DeliveryID, models.DELIVERY_FAILED, lastStatus, lastSnippet, lastErr, attempted)
	log.Errorf("[Webhook] Delivery %s failed after %d attempts", job.DeliveryID, attempted)
}

// post performs one signed HTTP POST of the exact payload bytes.
func (d *Dispatcher) post(job deliveryJob) (int, string, error) {
	req, err := http.NewRequest(http.MethodPost, job.URL, bytes.NewReader(job.Body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", job.Event)
	req.Header.Set("X-Webhook-Timestamp", job.Timestamp)
	if job.Secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(job.Secret, job.Body))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
	return resp.StatusCode, string(snippet), nil
}

func (d *Dispatcher) finalize(id, status string, httpStatus *int, snippet, errMsg string, attempts int) {
	if err := d.logs.Finalize(context.Background(), id, status, httpStatus, snippet, errMsg, attempts); err != nil {
		log.Errorf("[Webhook] Failed to finalize delivery %s: %v", id, err)
	}
}
