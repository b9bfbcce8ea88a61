package sample

import (
	"time"

	"github.com/google/uuid"
)

// Sample is a single geotagged radio measurement captured during a survey
// drive. Optional fields are nil when the acquisition pipeline produced no
// reading for them; once stored, a Sample is immutable.
type Sample struct {
	ID            string    // Unique identifier, assigned upstream
	Lat           float64   // Latitude in degrees
	Lon           float64   // Longitude in degrees
	Timestamp     time.Time // Capture time, millisecond precision
	Path          *string   // Route or provenance label
	Geohash       string    // Precomputed spatial index key, treated as opaque
	RSSI          *int      // Received signal strength in dBm
	SNR           *int      // Signal-to-noise ratio in dB
	PingSuccess   *bool     // Whether a connectivity probe succeeded
	ObserverNames *string   // Serialized observer identifiers, stored verbatim
}

// New returns a Sample with a freshly assigned identifier and the timestamp
// truncated to millisecond precision, matching what the store persists.
func New(lat, lon float64, timestamp time.Time, geohash string) Sample {
	return Sample{
		ID:        uuid.NewString(),
		Lat:       lat,
		Lon:       lon,
		Timestamp: timestamp.UTC().Truncate(time.Millisecond),
		Geohash:   geohash,
	}
}
