package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/meshwatch/fieldmap/internal/sample"
)

func testRecord() Record {
	path := "drive-7"
	rssi := -95
	success := true

	return Record{
		ID:          "rec-1",
		Lat:         51.5074,
		Lon:         -0.1278,
		Timestamp:   1700000000000,
		Path:        &path,
		Geohash:     "gcpvj0",
		RSSI:        &rssi,
		PingSuccess: &success,
	}
}

func TestFromSample_RoundTrip(t *testing.T) {
	snr := 9
	observers := `["delta"]`

	smp := sample.Sample{
		ID:            "sample-1",
		Lat:           48.8566,
		Lon:           2.3522,
		Timestamp:     time.UnixMilli(1700000000000).UTC(),
		Geohash:       "u09tvw",
		SNR:           &snr,
		ObserverNames: &observers,
	}

	back := FromSample(smp).Sample()

	if back.ID != smp.ID || back.Lat != smp.Lat || back.Lon != smp.Lon || back.Geohash != smp.Geohash {
		t.Errorf("Round-trip changed core fields: got %+v, want %+v", back, smp)
	}
	if !back.Timestamp.Equal(smp.Timestamp) {
		t.Errorf("Round-trip timestamp = %v, want %v", back.Timestamp, smp.Timestamp)
	}
	if back.SNR == nil || *back.SNR != snr {
		t.Errorf("Round-trip snr = %v, want %d", back.SNR, snr)
	}
	if back.ObserverNames == nil || *back.ObserverNames != observers {
		t.Errorf("Round-trip observerNames = %v, want %q", back.ObserverNames, observers)
	}
	if back.Path != nil || back.RSSI != nil || back.PingSuccess != nil {
		t.Errorf("Round-trip invented absent fields: %+v", back)
	}
}

func TestJSONExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input produces an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		exporter := &JSONExporter{}

		if err := exporter.Export(ctx, nil, &buf); err != nil {
			t.Fatalf("Failed to export: %v", err)
		}
		if got := buf.String(); got != "[]" {
			t.Errorf("Empty export = %q, want \"[]\"", got)
		}
	})

	t.Run("absent fields are omitted", func(t *testing.T) {
		var buf bytes.Buffer
		exporter := &JSONExporter{}

		if err := exporter.Export(ctx, []Record{testRecord()}, &buf); err != nil {
			t.Fatalf("Failed to export: %v", err)
		}

		out := buf.String()
		for _, key := range []string{`"id"`, `"lat"`, `"lon"`, `"timestamp"`, `"geohash"`, `"path"`, `"rssi"`, `"pingSuccess"`} {
			if !strings.Contains(out, key) {
				t.Errorf("Export missing key %s: %s", key, out)
			}
		}
		for _, key := range []string{`"snr"`, `"observerNames"`} {
			if strings.Contains(out, key) {
				t.Errorf("Export contains absent key %s: %s", key, out)
			}
		}
	})

	t.Run("pretty output parses back", func(t *testing.T) {
		var buf bytes.Buffer
		exporter := &JSONExporter{Pretty: true}

		want := testRecord()
		if err := exporter.Export(ctx, []Record{want}, &buf); err != nil {
			t.Fatalf("Failed to export: %v", err)
		}
		if !strings.Contains(buf.String(), "\n") {
			t.Error("Pretty export is not indented")
		}

		records, err := ParseRecords(&buf)
		if err != nil {
			t.Fatalf("Failed to parse export: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Parsed %d records, want 1", len(records))
		}
		if records[0].ID != want.ID || records[0].Timestamp != want.Timestamp {
			t.Errorf("Parsed record = %+v, want %+v", records[0], want)
		}
		if records[0].RSSI == nil || *records[0].RSSI != *want.RSSI {
			t.Errorf("Parsed rssi = %v, want %d", records[0].RSSI, *want.RSSI)
		}
	})
}

func TestCSVExporter(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	exporter := &CSVExporter{IncludeHeader: true}

	if err := exporter.Export(ctx, []Record{testRecord()}, &buf); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("CSV has %d rows, want 2", len(rows))
	}

	if rows[0][0] != "id" || rows[0][9] != "observerNames" {
		t.Errorf("Unexpected header row: %v", rows[0])
	}

	row := rows[1]
	if row[0] != "rec-1" {
		t.Errorf("id cell = %q, want rec-1", row[0])
	}
	if row[3] != "1700000000000" {
		t.Errorf("timestamp cell = %q, want 1700000000000", row[3])
	}
	if row[6] != "-95" {
		t.Errorf("rssi cell = %q, want -95", row[6])
	}
	if row[8] != "true" {
		t.Errorf("pingSuccess cell = %q, want true", row[8])
	}

	// Absent fields become empty cells.
	if row[7] != "" || row[9] != "" {
		t.Errorf("Absent fields not empty: snr=%q observerNames=%q", row[7], row[9])
	}
}

func TestNewExporter(t *testing.T) {
	if _, err := NewExporter("json", false); err != nil {
		t.Errorf("NewExporter(json) failed: %v", err)
	}
	if _, err := NewExporter("csv", false); err != nil {
		t.Errorf("NewExporter(csv) failed: %v", err)
	}
	if _, err := NewExporter("xml", false); err == nil {
		t.Error("NewExporter(xml) should fail")
	}
}

func TestJSONExporter_MarshalShape(t *testing.T) {
	data, err := json.Marshal(testRecord())
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal record: %v", err)
	}
	if decoded["timestamp"] != float64(1700000000000) {
		t.Errorf("timestamp field = %v, want 1700000000000", decoded["timestamp"])
	}
	if decoded["pingSuccess"] != true {
		t.Errorf("pingSuccess field = %v, want true", decoded["pingSuccess"])
	}
}
