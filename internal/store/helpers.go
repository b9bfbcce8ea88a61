package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/meshwatch/fieldmap/internal/sample"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if rbErr := rb.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && *err == nil {
		*err = rbErr
	}
}

// insertArgs flattens a sample into the argument list matching the insert
// column order.
func insertArgs(smp sample.Sample) []any {
	return []any{
		smp.ID,
		smp.Lat,
		smp.Lon,
		smp.Timestamp.UnixMilli(),
		toNullString(smp.Path),
		smp.Geohash,
		toNullInt64(smp.RSSI),
		toNullInt64(smp.SNR),
		toNullBool(smp.PingSuccess),
		toNullString(smp.ObserverNames),
	}
}

func scanSample(rows *sql.Rows) (sample.Sample, error) {
	var (
		smp              sample.Sample
		ts               int64
		path, observers  sql.NullString
		rssi, snr, pingS sql.NullInt64
	)

	if err := rows.Scan(&smp.ID, &smp.Lat, &smp.Lon, &ts, &path, &smp.Geohash, &rssi, &snr, &pingS, &observers); err != nil {
		return sample.Sample{}, err
	}

	smp.Timestamp = time.UnixMilli(ts).UTC()
	smp.Path = fromNullString(path)
	smp.RSSI = fromNullInt(rssi)
	smp.SNR = fromNullInt(snr)
	smp.PingSuccess = fromNullBool(pingS)
	smp.ObserverNames = fromNullString(observers)

	return smp, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// toNullBool stores booleans as 0/1, keeping absence distinct from false.
func toNullBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	var v int64
	if *b {
		v = 1
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func fromNullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func fromNullBool(ni sql.NullInt64) *bool {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64 != 0
	return &v
}
