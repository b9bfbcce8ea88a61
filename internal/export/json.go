package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// JSONExporter writes records as a JSON array.
type JSONExporter struct {
	// Pretty indents the output for human consumption.
	Pretty bool
}

// Export writes all records to w. An empty record set produces an empty
// JSON array, not an error.
func (e *JSONExporter) Export(_ context.Context, records []Record, w io.Writer) error {
	if len(records) == 0 {
		if _, err := w.Write([]byte("[]")); err != nil {
			return fmt.Errorf("writing empty export: %w", err)
		}
		return nil
	}

	var (
		data []byte
		err  error
	)
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// ParseRecords reads a JSON export back into records, accepting both the
// compact and pretty forms.
func ParseRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return records, nil
}
