package report

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/boundary"
)

// MemoryReporter collects reports in memory. Useful in tests and as a
// dev-mode sink.
type MemoryReporter struct {
	mu      sync.Mutex
	reports []*Report
}

func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

func (m *MemoryReporter) Report(ctx context.Context, report *Report) error {
	m.mu.Lock()
	m.reports = append(m.reports, report)
	m.mu.Unlock()
	return nil
}

func (m *MemoryReporter) Close() error { return nil }

// Reports returns a copy of everything collected so far.
func (m *MemoryReporter) Reports() []*Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Report, len(m.reports))
	copy(out, m.reports)
	return out
}

// Queue wraps a Reporter with a buffered channel and a worker
// goroutine so Enqueue never blocks the request path. When the buffer
// is full the report is dropped and counted, never queued at the
// caller's expense.
type Queue struct {
	sink    Reporter
	logger  *slog.Logger
	timeout time.Duration

	reports chan *Report
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	dropped int
	closed  bool
}

// QueueConfig configures a Queue.
type QueueConfig struct {
	// BufferSize is the channel capacity (default: 256).
	BufferSize int

	// Timeout bounds each sink call (default: 10s).
	Timeout time.Duration

	// Logger for sink failures. Nil means slog.Default().
	Logger *slog.Logger
}

// NewQueue starts the worker goroutine. Call Close to flush and stop.
func NewQueue(sink Reporter, config QueueConfig) *Queue {
	if config.BufferSize == 0 {
		config.BufferSize = 256
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	q := &Queue{
		sink:    sink,
		logger:  config.Logger,
		timeout: config.Timeout,
		reports: make(chan *Report, config.BufferSize),
		done:    make(chan struct{}),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

// Enqueue hands a report to the worker. Never blocks; reports are
// dropped when the buffer is full or the queue is closed. The send
// happens under the mutex so a report can never slip into the channel
// after Close has drained it.
func (q *Queue) Enqueue(report *Report) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	select {
	case q.reports <- report:
	default:
		q.dropped++
		q.logger.Warn("report queue full, dropping report", "kind", report.Kind)
	}
}

// Dropped returns how many reports were discarded due to a full
// buffer.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Observer adapts the queue to a boundary observer so every handled
// server error is reported:
//
//	boundary.Root(dev, boundary.WithObserver(queue.Observer(500)))
//
// minStatus filters out expected client errors; pass 0 to report
// everything.
func (q *Queue) Observer(minStatus int) boundary.Observer {
	return func(r *http.Request, err *apperr.Error) {
		if err.StatusCode < minStatus {
			return
		}
		q.Enqueue(FromError(r, err))
	}
}

// Close drains buffered reports, closes the sink, and stops the
// worker. Enqueue calls made after Close are dropped.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	close(q.done)
	q.wg.Wait()
	return q.sink.Close()
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case report := <-q.reports:
			q.deliver(report)
		case <-q.done:
			// Drain what is already buffered before exiting.
			for {
				select {
				case report := <-q.reports:
					q.deliver(report)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) deliver(report *Report) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.sink.Report(ctx, report); err != nil {
		q.logger.Error("report delivery failed", "kind", report.Kind, "error", err)
	}
}
