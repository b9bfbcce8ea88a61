package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVExporter writes records as CSV rows with one column per field. Absent
// optional fields become empty cells.
type CSVExporter struct {
	// IncludeHeader emits a header row with the column names.
	IncludeHeader bool
}

var csvHeader = []string{
	"id", "lat", "lon", "timestamp", "path", "geohash", "rssi", "snr", "pingSuccess", "observerNames",
}

// Export writes all records to w.
func (e *CSVExporter) Export(_ context.Context, records []Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for _, rec := range records {
		if err := writer.Write(recordRow(rec)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	return nil
}

func recordRow(rec Record) []string {
	return []string{
		rec.ID,
		strconv.FormatFloat(rec.Lat, 'f', -1, 64),
		strconv.FormatFloat(rec.Lon, 'f', -1, 64),
		strconv.FormatInt(rec.Timestamp, 10),
		stringCell(rec.Path),
		rec.Geohash,
		intCell(rec.RSSI),
		intCell(rec.SNR),
		boolCell(rec.PingSuccess),
		stringCell(rec.ObserverNames),
	}
}

func stringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolCell(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
