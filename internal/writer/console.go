// internal/writer/console.go
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tamzrod/register-poller/internal/poller"
)

// Console styles.
const (
	StyleTable = "table"
	StylePlain = "plain"
)

// ConsoleWriter renders each cycle for a terminal.
type ConsoleWriter struct {
	out   io.Writer
	style string
}

func NewConsoleWriter(out io.Writer, style string) *ConsoleWriter {
	if style == "" {
		style = StyleTable
	}
	return &ConsoleWriter{out: out, style: style}
}

func (w *ConsoleWriter) Write(res poller.PollResult) error {
	if res.Err != nil {
		return ErrFailedCycle
	}

	if w.style == StylePlain {
		for _, f := range res.Fields {
			line := strings.TrimSpace(fmt.Sprintf("%s: %s %s", f.Name, f.Value, f.Unit))
			if _, err := fmt.Fprintln(w.out, line); err != nil {
				return err
			}
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s @ %s", res.UnitID, res.At.Format("2006-01-02 15:04:05")))
	t.AppendHeader(table.Row{"Address", "Name", "Value", "Unit"})
	for _, f := range res.Fields {
		t.AppendRow(table.Row{f.Address.String(), f.Name, f.Value.String(), f.Unit})
	}
	t.Render()
	return nil
}
