package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// queueSize is the buffer size for the event queue
	queueSize = 1000

	// maxResponseBodySize limits how much of the response body we log (1KB)
	maxResponseBodySize = 1024
)

// Dispatcher fans rule-change events out to the configured endpoints.
// Delivery runs on a single worker goroutine; Dispatch never blocks the
// mutating request.
type Dispatcher struct {
	endpoints []Endpoint
	client    *http.Client
	queue     chan Event
	done      chan struct{}
	closed    int32 // atomic flag to prevent double-close
}

// NewDispatcher creates a dispatcher for the given endpoints.
func NewDispatcher(endpoints []Endpoint) *Dispatcher {
	return &Dispatcher{
		endpoints: endpoints,
		client: &http.Client{
			// Default timeout; per-endpoint timeouts are applied via context.
			Timeout: 30 * time.Second,
		},
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}
}

// Start begins processing events from the queue.
func (d *Dispatcher) Start() {
	go d.worker()
}

// Close gracefully shuts down the dispatcher: it closes the queue and
// waits for pending deliveries to finish. Safe to call multiple times.
func (d *Dispatcher) Close() error {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return nil
	}
	close(d.queue)
	<-d.done
	return nil
}

// QueueDepth reports how many events are waiting for delivery.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

// Dispatch queues an event for delivery. Non-blocking: when the queue is
// full the event is dropped and logged.
func (d *Dispatcher) Dispatch(event Event) {
	select {
	case d.queue <- event:
		log.Printf("[webhook] event queued: type=%s rule=%s env=%s queue_size=%d",
			event.Type, event.Resource.Name, event.Environment, len(d.queue))
	default:
		log.Printf("[webhook] queue full (size=%d), dropping event: type=%s rule=%s env=%s",
			queueSize, event.Type, event.Resource.Name, event.Environment)
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for event := range d.queue {
		for _, ep := range d.matching(event) {
			d.deliverWithRetry(context.Background(), ep, event)
		}
	}
}

// matching returns the endpoints subscribed to this event's type and
// environment.
func (d *Dispatcher) matching(event Event) []Endpoint {
	var matched []Endpoint
	for _, ep := range d.endpoints {
		if !contains(ep.Events, event.Type) {
			continue
		}
		if len(ep.Environments) > 0 && !contains(ep.Environments, event.Environment) {
			continue
		}
		matched = append(matched, ep)
	}
	return matched
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// deliverWithRetry attempts delivery with exponential backoff between
// attempts. Each delivery carries a stable delivery ID across retries.
func (d *Dispatcher) deliverWithRetry(ctx context.Context, ep Endpoint, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[webhook] failed to marshal event payload: endpoint=%s event_type=%s error=%v",
			ep.Name, event.Type, err)
		return
	}

	signature := ComputeHMAC(payload, ep.Secret)
	deliveryID := uuid.New().String()

	for attempt := 0; attempt <= ep.MaxRetries; attempt++ {
		start := time.Now()

		req, err := http.NewRequest(http.MethodPost, ep.URL, bytes.NewReader(payload))
		if err != nil {
			log.Printf("[webhook] failed to create request: endpoint=%s url=%s error=%v",
				ep.Name, ep.URL, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Comprules-Signature", signature)
		req.Header.Set("X-Comprules-Event", event.Type)
		req.Header.Set("X-Comprules-Delivery", deliveryID)

		reqCtx, cancel := context.WithTimeout(ctx, time.Duration(ep.TimeoutSeconds)*time.Second)
		resp, err := d.client.Do(req.WithContext(reqCtx))
		duration := time.Since(start)

		var statusCode int
		var errorMsg string
		if err != nil {
			errorMsg = err.Error()
		} else {
			statusCode = resp.StatusCode
			// Drain a bounded amount so the connection can be reused.
			_, _ = io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
			resp.Body.Close()
		}
		cancel()

		if err == nil && statusCode >= 200 && statusCode < 300 {
			log.Printf("[webhook] delivery succeeded: endpoint=%s status=%d duration=%dms attempt=%d/%d",
				ep.Name, statusCode, duration.Milliseconds(), attempt+1, ep.MaxRetries+1)
			return
		}

		if attempt < ep.MaxRetries {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			log.Printf("[webhook] delivery failed: endpoint=%s status=%d error=%q attempt=%d/%d retry_in=%s",
				ep.Name, statusCode, errorMsg, attempt+1, ep.MaxRetries+1, backoff)
			time.Sleep(backoff)
		} else {
			log.Printf("[webhook] delivery failed permanently: endpoint=%s status=%d error=%q attempts=%d",
				ep.Name, statusCode, errorMsg, attempt+1)
		}
	}
}
