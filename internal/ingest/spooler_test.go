package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/meshwatch/fieldmap/internal/sample"
	"github.com/meshwatch/fieldmap/internal/store"
)

func newTestSpooler(t *testing.T, options ...Option) (*Spooler, *store.Store) {
	t.Helper()

	st := store.New(t.TempDir())
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})

	return NewSpooler(st, slog.Default(), options...), st
}

func testSample(id string, ts time.Time) sample.Sample {
	return sample.Sample{
		ID:        id,
		Lat:       40.7128,
		Lon:       -74.006,
		Timestamp: ts,
		Geohash:   "dr5reg",
	}
}

func TestSpooler_FlushOnClose(t *testing.T) {
	spooler, st := newTestSpooler(t, WithBatchSize(50), WithFlushInterval(time.Hour))
	ctx := context.Background()
	baseTime := time.Now()

	spooler.Start(ctx)

	// Fewer samples than the batch size: nothing flushes until Close drains.
	for i := 0; i < 7; i++ {
		spooler.Add(testSample(fmt.Sprintf("sample-%d", i), baseTime.Add(time.Duration(i)*time.Second)))
	}

	if err := spooler.Close(); err != nil {
		t.Fatalf("Failed to close spooler: %v", err)
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count samples: %v", err)
	}
	if count != 7 {
		t.Errorf("Count = %d, want 7", count)
	}

	inserted, skipped := spooler.Counts()
	if inserted != 7 || skipped != 0 {
		t.Errorf("Counts = (%d, %d), want (7, 0)", inserted, skipped)
	}
}

func TestSpooler_FlushOnBatchSize(t *testing.T) {
	spooler, st := newTestSpooler(t, WithBatchSize(5), WithFlushInterval(time.Hour))
	ctx := context.Background()
	baseTime := time.Now()

	spooler.Start(ctx)

	for i := 0; i < 5; i++ {
		spooler.Add(testSample(fmt.Sprintf("sample-%d", i), baseTime.Add(time.Duration(i)*time.Second)))
	}

	// A full batch flushes without waiting for the interval or Close.
	deadline := time.Now().Add(5 * time.Second)
	for {
		count, err := st.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count samples: %v", err)
		}
		if count == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Batch not flushed, count = %d, want 5", count)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := spooler.Close(); err != nil {
		t.Fatalf("Failed to close spooler: %v", err)
	}
}

func TestSpooler_FlushOnInterval(t *testing.T) {
	spooler, st := newTestSpooler(t, WithBatchSize(100), WithFlushInterval(20*time.Millisecond))
	ctx := context.Background()

	spooler.Start(ctx)
	spooler.Add(testSample("sample-1", time.Now()))

	deadline := time.Now().Add(5 * time.Second)
	for {
		count, err := st.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count samples: %v", err)
		}
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Sample not flushed on interval")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := spooler.Close(); err != nil {
		t.Fatalf("Failed to close spooler: %v", err)
	}
}

func TestSpooler_CountsDuplicates(t *testing.T) {
	spooler, st := newTestSpooler(t, WithBatchSize(10), WithFlushInterval(time.Hour))
	ctx := context.Background()
	baseTime := time.Now()

	if _, err := st.InsertOne(ctx, testSample("dup", baseTime)); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	spooler.Start(ctx)
	spooler.Add(testSample("dup", baseTime))
	spooler.Add(testSample("new", baseTime.Add(time.Second)))

	if err := spooler.Close(); err != nil {
		t.Fatalf("Failed to close spooler: %v", err)
	}

	inserted, skipped := spooler.Counts()
	if inserted != 1 {
		t.Errorf("Inserted = %d, want 1", inserted)
	}
	if skipped != 1 {
		t.Errorf("Skipped = %d, want 1", skipped)
	}
}

func TestSpooler_DrainsOnCancel(t *testing.T) {
	spooler, st := newTestSpooler(t, WithBatchSize(100), WithFlushInterval(time.Hour))
	baseTime := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	spooler.Start(ctx)

	for i := 0; i < 3; i++ {
		spooler.Add(testSample(fmt.Sprintf("sample-%d", i), baseTime.Add(time.Duration(i)*time.Second)))
	}

	cancel()

	if err := spooler.Close(); err != nil {
		t.Fatalf("Failed to close spooler: %v", err)
	}

	count, err := st.Count(context.Background())
	if err != nil {
		t.Fatalf("Failed to count samples: %v", err)
	}
	if count != 3 {
		t.Errorf("Count after cancel = %d, want 3", count)
	}
}
