// internal/writer/jsonl.go
package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tamzrod/register-poller/internal/decoder"
	"github.com/tamzrod/register-poller/internal/poller"
)

// Reading is the JSON form of one successful cycle, shared by the
// JSON lines, MQTT and HTTP surfaces.
type Reading struct {
	Device  string                 `json:"device"`
	At      time.Time              `json:"at"`
	TookMs  int64                  `json:"took_ms"`
	Version string                 `json:"version,omitempty"`
	Fields  []decoder.DecodedField `json:"fields"`
}

// NewReading converts a poll result into its JSON form.
func NewReading(res poller.PollResult) Reading {
	return Reading{
		Device: res.UnitID,
		At:     res.At,
		TookMs: res.Duration.Milliseconds(),
		Fields: res.Fields,
	}
}

// JSONLWriter appends one JSON object per cycle.
type JSONLWriter struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLWriter writes to stdout for path "-", otherwise appends to path.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	if path == "-" || path == "" {
		return &JSONLWriter{enc: json.NewEncoder(os.Stdout)}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("jsonl: %w", err)
	}
	return &JSONLWriter{enc: json.NewEncoder(f), closer: f}, nil
}

func newJSONLWriterTo(w io.Writer) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w)}
}

func (w *JSONLWriter) Write(res poller.PollResult) error {
	if res.Err != nil {
		return ErrFailedCycle
	}
	return w.enc.Encode(NewReading(res))
}

func (w *JSONLWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
