package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/meshwatch/fieldmap/internal/export"
	"github.com/meshwatch/fieldmap/internal/sample"
)

// InsertResult reports how the store resolved a single-row insert.
type InsertResult int

const (
	// Inserted means the row was written.
	Inserted InsertResult = iota

	// DuplicateIgnored means a row with the same id already existed; the
	// existing row wins and the new one is discarded.
	DuplicateIgnored
)

func (r InsertResult) String() string {
	if r == DuplicateIgnored {
		return "duplicate-ignored"
	}
	return "inserted"
}

const insertSQL = `
    INSERT OR IGNORE INTO samples (
        id,
        lat,
        lon,
        timestamp,
        path,
        geohash,
        rssi,
        snr,
        ping_success,
        observer_names
    )
    VALUES `

const insertPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// insertChunkRows keeps each statement under the default SQLite limit of 999
// bound variables (10 columns per row).
const insertChunkRows = 99

const selectSQL = `
    SELECT id, lat, lon, timestamp, path, geohash, rssi, snr, ping_success, observer_names
    FROM samples`

// InsertOne inserts a single sample. A sample whose id is already stored is
// silently discarded and reported as DuplicateIgnored; the stored row is
// never overwritten.
func (s *Store) InsertOne(ctx context.Context, smp sample.Sample) (result InsertResult, err error) {
	db, err := s.database(ctx)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, insertSQL+insertPlaceholder)
	if err != nil {
		return 0, &IOError{Op: "preparing insert", Err: err}
	}
	defer closeWithError(stmt, &err)

	res, err := stmt.ExecContext(ctx, insertArgs(smp)...)
	if err != nil {
		return 0, &IOError{Op: "inserting sample", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &IOError{Op: "reading rows affected", Err: err}
	}
	if affected == 0 {
		return DuplicateIgnored, nil
	}
	return Inserted, nil
}

// InsertMany inserts a batch of samples in a single transaction and returns
// the number of rows actually written. Samples with already-stored ids are
// skipped with the same semantics as InsertOne. On any failure the whole
// batch rolls back; readers never observe a partial batch.
func (s *Store) InsertMany(ctx context.Context, samples []sample.Sample) (inserted int64, err error) {
	if len(samples) == 0 {
		return 0, nil
	}

	db, err := s.database(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &IOError{Op: "beginning transaction", Err: err}
	}
	defer rollbackWithError(tx, &err)

	for chunk := range slices.Chunk(samples, insertChunkRows) {
		values := make([]any, 0, len(chunk)*10)

		var sb strings.Builder
		sb.WriteString(insertSQL)

		for i, smp := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(insertPlaceholder)
			values = append(values, insertArgs(smp)...)
		}

		res, execErr := tx.ExecContext(ctx, sb.String(), values...)
		if execErr != nil {
			return 0, &IOError{Op: "batch inserting samples", Err: execErr}
		}

		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return 0, &IOError{Op: "reading rows affected", Err: raErr}
		}
		inserted += affected
	}

	if err = tx.Commit(); err != nil {
		return 0, &IOError{Op: "committing batch", Err: err}
	}

	return inserted, nil
}

// GetAll returns every sample, most recent first.
func (s *Store) GetAll(ctx context.Context) ([]sample.Sample, error) {
	return s.querySamples(ctx, selectSQL+` ORDER BY timestamp DESC`)
}

// GetByTimeRange returns samples with start <= timestamp <= end, most recent
// first. Both bounds are inclusive.
func (s *Store) GetByTimeRange(ctx context.Context, start, end time.Time) ([]sample.Sample, error) {
	return s.querySamples(ctx, selectSQL+` WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp DESC`,
		start.UnixMilli(), end.UnixMilli())
}

// GetSince returns samples with timestamp strictly greater than since, most
// recent first.
func (s *Store) GetSince(ctx context.Context, since time.Time) ([]sample.Sample, error) {
	return s.querySamples(ctx, selectSQL+` WHERE timestamp > ? ORDER BY timestamp DESC`,
		since.UnixMilli())
}

// GetMostRecent returns the sample with the highest timestamp, or ErrNoSamples
// when the store is empty.
func (s *Store) GetMostRecent(ctx context.Context) (*sample.Sample, error) {
	samples, err := s.querySamples(ctx, selectSQL+` ORDER BY timestamp DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return &samples[0], nil
}

// Count returns the total number of stored samples.
func (s *Store) Count(ctx context.Context) (int64, error) {
	db, err := s.database(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&count); err != nil {
		return 0, &IOError{Op: "counting samples", Err: err}
	}
	return count, nil
}

// DeleteAll removes every sample and returns the number of rows removed. The
// table and its indexes remain defined.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	return s.deleteSamples(ctx, `DELETE FROM samples`)
}

// DeleteOlderThan removes samples with timestamp strictly before cutoff and
// returns the number of rows removed. Samples at exactly the cutoff survive.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteSamples(ctx, `DELETE FROM samples WHERE timestamp < ?`, cutoff.UnixMilli())
}

// ExportAll returns every sample in GetAll order, converted to the
// serialization-ready export representation.
func (s *Store) ExportAll(ctx context.Context) ([]export.Record, error) {
	samples, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return export.FromSamples(samples), nil
}

func (s *Store) querySamples(ctx context.Context, query string, args ...any) (samples []sample.Sample, err error) {
	db, err := s.database(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &IOError{Op: "querying samples", Err: err}
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		smp, scanErr := scanSample(rows)
		if scanErr != nil {
			return nil, &IOError{Op: "scanning sample row", Err: scanErr}
		}
		samples = append(samples, smp)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, &IOError{Op: "iterating sample rows", Err: rowsErr}
	}

	return samples, nil
}

func (s *Store) deleteSamples(ctx context.Context, query string, args ...any) (int64, error) {
	db, err := s.database(ctx)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &IOError{Op: "deleting samples", Err: err}
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, &IOError{Op: "reading rows affected", Err: err}
	}
	return removed, nil
}
