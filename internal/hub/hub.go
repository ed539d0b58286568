package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/atikulmunna/logsift/internal/report"
)

const subscriberBuffer = 16

// Hub receives reports from watch-mode runs and broadcasts them to all subscribers.
type Hub struct {
	input       <-chan report.Report
	log         *slog.Logger
	mu          sync.RWMutex
	subscribers []chan report.Report
	latest      *report.Report
	dropped     int64
}

// New creates a Hub that reads from the input channel.
func New(input <-chan report.Report, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		input: input,
		log:   logger,
	}
}

// Subscribe returns a buffered channel that will receive reports.
// Multiple consumers can subscribe; each gets a copy of every report.
func (h *Hub) Subscribe() <-chan report.Report {
	ch := make(chan report.Report, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan report.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ch := range h.subscribers {
		if ch == sub {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Latest returns the most recent report, if any was published.
func (h *Hub) Latest() (report.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return report.Report{}, false
	}
	return *h.latest, true
}

// Dropped returns the total number of reports dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Start begins reading from the input channel and broadcasting.
// Blocks until the context is cancelled or the input channel is closed.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case rep, ok := <-h.input:
			if !ok {
				return
			}
			h.broadcast(rep)
		}
	}
}

// broadcast records rep as the latest report and sends it to all subscribers.
// If a subscriber's channel is full, the report is dropped for that subscriber.
func (h *Hub) broadcast(rep report.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &rep
	for _, ch := range h.subscribers {
		select {
		case ch <- rep:
		default:
			h.dropped++
			h.log.Warn("hub: dropped report for slow consumer", "run_id", rep.RunID, "total_dropped", h.dropped)
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
