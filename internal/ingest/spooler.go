package ingest

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meshwatch/fieldmap/internal/sample"
	"github.com/meshwatch/fieldmap/internal/store"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 2 * time.Second
)

// Option configures a Spooler.
type Option func(*Spooler)

// WithBatchSize sets how many samples accumulate before a flush. The same
// size caps each database transaction.
func WithBatchSize(size int) Option {
	return func(s *Spooler) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithFlushInterval sets how long a partial batch may sit before it is
// flushed anyway.
func WithFlushInterval(interval time.Duration) Option {
	return func(s *Spooler) {
		if interval > 0 {
			s.flushInterval = interval
		}
	}
}

// Spooler sits between a sample producer and the store, buffering samples
// and writing them in batches so frequent small captures do not pay per-row
// transaction overhead. Flushes happen when a batch fills or when the flush
// interval elapses, whichever comes first.
type Spooler struct {
	store  *store.Store
	logger *slog.Logger

	batchSize     int
	flushInterval time.Duration

	in chan sample.Sample
	wg sync.WaitGroup

	inserted atomic.Int64
	skipped  atomic.Int64

	mu      sync.Mutex
	lastErr error
}

// NewSpooler creates a Spooler writing to st. Start must be called before
// samples are queued.
func NewSpooler(st *store.Store, logger *slog.Logger, options ...Option) *Spooler {
	s := Spooler{
		store:         st,
		logger:        logger,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
	}

	for _, option := range options {
		option(&s)
	}

	s.in = make(chan sample.Sample, s.batchSize)
	return &s
}

// Start launches the background flush loop. Cancelling ctx drains whatever
// is already queued and stops the loop; Add must not be called after that.
func (s *Spooler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Add queues a sample for insertion, blocking while the queue is full.
// Add must not be called after Close.
func (s *Spooler) Add(smp sample.Sample) {
	s.in <- smp
}

// Close stops intake, waits for the final flush to complete, and returns the
// last flush failure if any batch could not be written.
func (s *Spooler) Close() error {
	close(s.in)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Counts reports how many samples were written and how many were skipped as
// duplicates since the spooler started.
func (s *Spooler) Counts() (inserted, skipped int64) {
	return s.inserted.Load(), s.skipped.Load()
}

func (s *Spooler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	pending := make([]sample.Sample, 0, s.batchSize)

	for {
		select {
		case smp, ok := <-s.in:
			if !ok {
				s.flush(context.Background(), pending)
				return
			}

			pending = append(pending, smp)
			if len(pending) >= s.batchSize {
				pending = s.flush(ctx, pending)
			}

		case <-ticker.C:
			pending = s.flush(ctx, pending)

		case <-ctx.Done():
		drain:
			for {
				select {
				case smp, ok := <-s.in:
					if !ok {
						break drain
					}
					pending = append(pending, smp)
				default:
					break drain
				}
			}

			s.flush(context.Background(), pending)
			return
		}
	}
}

// flush writes pending samples and returns the reusable empty slice. A batch
// that fails to write is dropped after logging; stalling the producer would
// lose newer samples instead.
func (s *Spooler) flush(ctx context.Context, pending []sample.Sample) []sample.Sample {
	if len(pending) == 0 {
		return pending
	}

	for chunk := range slices.Chunk(pending, s.batchSize) {
		inserted, err := s.store.InsertMany(ctx, chunk)
		if err != nil {
			s.setErr(err)
			s.logger.Error("flushing sample batch",
				slog.Any("error", err),
				slog.Int("dropped", len(chunk)))
			continue
		}

		s.inserted.Add(inserted)
		s.skipped.Add(int64(len(chunk)) - inserted)
	}

	return pending[:0]
}

func (s *Spooler) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
