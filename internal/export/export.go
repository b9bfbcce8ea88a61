package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/meshwatch/fieldmap/internal/sample"
)

// Record is the serialization-ready form of a sample. Field names and value
// encodings are the contract with the export/UI layer: timestamps are Unix
// milliseconds and absent optional fields are omitted entirely.
type Record struct {
	ID            string  `json:"id"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Timestamp     int64   `json:"timestamp"` // Unix milliseconds
	Path          *string `json:"path,omitempty"`
	Geohash       string  `json:"geohash"`
	RSSI          *int    `json:"rssi,omitempty"`
	SNR           *int    `json:"snr,omitempty"`
	PingSuccess   *bool   `json:"pingSuccess,omitempty"`
	ObserverNames *string `json:"observerNames,omitempty"`
}

// FromSample converts a stored sample to its export form.
func FromSample(smp sample.Sample) Record {
	return Record{
		ID:            smp.ID,
		Lat:           smp.Lat,
		Lon:           smp.Lon,
		Timestamp:     smp.Timestamp.UnixMilli(),
		Path:          smp.Path,
		Geohash:       smp.Geohash,
		RSSI:          smp.RSSI,
		SNR:           smp.SNR,
		PingSuccess:   smp.PingSuccess,
		ObserverNames: smp.ObserverNames,
	}
}

// FromSamples converts samples in order.
func FromSamples(samples []sample.Sample) []Record {
	records := make([]Record, len(samples))
	for i, smp := range samples {
		records[i] = FromSample(smp)
	}
	return records
}

// Sample converts a record back to the domain form, as when re-ingesting a
// previously exported file.
func (r Record) Sample() sample.Sample {
	return sample.Sample{
		ID:            r.ID,
		Lat:           r.Lat,
		Lon:           r.Lon,
		Timestamp:     time.UnixMilli(r.Timestamp).UTC(),
		Path:          r.Path,
		Geohash:       r.Geohash,
		RSSI:          r.RSSI,
		SNR:           r.SNR,
		PingSuccess:   r.PingSuccess,
		ObserverNames: r.ObserverNames,
	}
}

// Exporter writes records to a destination in one serialization format.
type Exporter interface {
	Export(ctx context.Context, records []Record, w io.Writer) error
}

// NewExporter returns the exporter for a format name.
func NewExporter(format string, pretty bool) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{Pretty: pretty}, nil
	case "csv":
		return &CSVExporter{IncludeHeader: true}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
