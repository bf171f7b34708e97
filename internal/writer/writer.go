// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/register-poller/internal/poller"
)

type namedWriter struct {
	name string
	w    Writer
}

// Multi fans one cycle out to every configured sink.
// A sink failure does not stop delivery to the others.
type Multi struct {
	sinks []namedWriter
}

// NewMulti returns an empty fan-out; add sinks with Add.
func NewMulti() *Multi {
	return &Multi{}
}

// Add appends a sink. Delivery follows insertion order.
func (m *Multi) Add(name string, w Writer) {
	m.sinks = append(m.sinks, namedWriter{name: name, w: w})
}

// Len is the number of sinks.
func (m *Multi) Len() int { return len(m.sinks) }

func (m *Multi) Write(res poller.PollResult) error {
	if res.Err != nil {
		return ErrFailedCycle
	}

	var errs []string
	for _, s := range m.sinks {
		if err := s.w.Write(res); err != nil {
			errs = append(errs, fmt.Sprintf("writer: sink=%s err=%v", s.name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}
