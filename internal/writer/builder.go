// internal/writer/builder.go
package writer

import (
	"os"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/register-poller/internal/config"
)

// Sinks is the fully-built output side of one device.
type Sinks struct {
	Data   *Multi
	Latest *Latest
	Status StatusWriter // nil when no sink delivers status
}

// Build creates every enabled sink from config.
// Assumes config has already passed validation.
// The in-memory Latest sink is always present.
func Build(c *cfg.Config, log *zap.Logger) (Sinks, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var closers []func() error
	closeAll := func() error {
		var last error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				last = err
			}
		}
		return last
	}

	s := Sinks{Data: NewMulti(), Latest: NewLatest()}
	s.Data.Add("latest", s.Latest)

	out := c.Outputs

	if out.CSV.Enabled {
		s.Data.Add("csv", NewCSVWriter(out.CSV.Path, out.CSV.Append))
	}

	if out.Console.Enabled {
		s.Data.Add("console", NewConsoleWriter(os.Stdout, out.Console.Style))
	}

	if out.JSONL.Enabled {
		w, err := NewJSONLWriter(out.JSONL.Path)
		if err != nil {
			_ = closeAll()
			return Sinks{}, nil, err
		}
		s.Data.Add("jsonl", w)
		closers = append(closers, w.Close)
	}

	if out.MQTT.Enabled {
		w, closeMQTT, err := DialMQTT(out.MQTT, c.Device.ID, log)
		if err != nil {
			_ = closeAll()
			return Sinks{}, nil, err
		}
		s.Data.Add("mqtt", w)
		s.Status = w
		closers = append(closers, closeMQTT)
	}

	log.Info("outputs ready", zap.Int("sinks", s.Data.Len()))
	return s, closeAll, nil
}
