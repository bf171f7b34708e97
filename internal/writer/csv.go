// internal/writer/csv.go
package writer

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tamzrod/register-poller/internal/poller"
)

// CSVHeader is the first row of every CSV file written.
var CSVHeader = []string{"Name", "Value", "Unit"}

// CSVWriter writes one row per decoded field.
// Default mode rewrites the file every cycle, leaving the latest reading only.
// Append mode keeps history and writes the header once.
type CSVWriter struct {
	path   string
	append bool
}

func NewCSVWriter(path string, appendRows bool) *CSVWriter {
	return &CSVWriter{path: path, append: appendRows}
}

func (w *CSVWriter) Write(res poller.PollResult) error {
	if res.Err != nil {
		return ErrFailedCycle
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if w.append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(w.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("csv: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		_ = cw.Write(CSVHeader)
	}
	for _, fld := range res.Fields {
		_ = cw.Write([]string{fld.Name, fld.Value.String(), fld.Unit})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: %s: %w", w.path, err)
	}
	return f.Close()
}
