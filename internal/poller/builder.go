// internal/poller/builder.go
package poller

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/register-poller/internal/config"
	"github.com/tamzrod/register-poller/internal/planner"
	pmodbus "github.com/tamzrod/register-poller/internal/poller/modbus"
	"github.com/tamzrod/register-poller/internal/schema"
)

// Build constructs a Poller and wires Modbus client lifecycle.
// Connection is reused while healthy.
// On transport death, Poller discards the client and uses factory on a future tick.
// No retries, no loops, no semantics.
func Build(c *cfg.Config, reg *schema.Registry, log *zap.Logger) (*Poller, func() error, error) {
	d := c.Device

	// client factory: ONE attempt per call
	factory := func() (Transport, error) {
		return pmodbus.New(pmodbus.Config{
			Driver:   d.Driver,
			Mode:     d.Mode,
			Port:     d.Port,
			BaudRate: d.BaudRate,
			DataBits: d.DataBits,
			Parity:   d.Parity,
			StopBits: d.StopBits,
			Address:  d.Address,
			Timeout:  time.Duration(d.TimeoutMs) * time.Millisecond,
		}, log)
	}

	// initial client (fail fast at startup)
	client, err := factory()
	if err != nil {
		return nil, nil, err
	}

	p, err := New(
		Config{
			UnitID:   d.ID,
			SlaveID:  d.SlaveID,
			Interval: time.Duration(c.Poll.IntervalMs) * time.Millisecond,
			Limits: planner.Limits{
				MaxGap:   c.Poll.MaxGap,
				MaxCount: c.Poll.MaxCount,
			},
		},
		reg,
		client,
		factory,
		log,
	)
	if err != nil {
		if closer, ok := client.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, nil, err
	}

	return p, p.Close, nil
}
