// internal/poller/modbus/simonvetter.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	smodbus "github.com/simonvetter/modbus"
)

// SimonvetterClient is one serial (or TCP) link driven by github.com/simonvetter/modbus.
type SimonvetterClient struct {
	mu         sync.Mutex
	client     *smodbus.ModbusClient
	instrument []Instrument
}

var simonvetterExceptions = map[error]uint8{
	smodbus.ErrIllegalFunction:         1,
	smodbus.ErrIllegalDataAddress:      2,
	smodbus.ErrIllegalDataValue:        3,
	smodbus.ErrServerDeviceFailure:     4,
	smodbus.ErrAcknowledge:             5,
	smodbus.ErrServerDeviceBusy:        6,
	smodbus.ErrMemoryParityError:       8,
	smodbus.ErrGWPathUnavailable:       10,
	smodbus.ErrGWTargetFailedToRespond: 11,
}

func newSimonvetterClient(cfg Config, inst []Instrument) (*SimonvetterClient, error) {
	conf := &smodbus.ClientConfiguration{
		Timeout: cfg.Timeout,
	}

	switch cfg.Mode {
	case ModeTCP:
		conf.URL = "tcp://" + cfg.Address
	default:
		conf.URL = "rtu://" + cfg.Port
		conf.Speed = uint(cfg.BaudRate)
		conf.DataBits = uint(cfg.DataBits)
		conf.StopBits = uint(cfg.StopBits)
		switch normalizeParity(cfg.Parity) {
		case "E":
			conf.Parity = smodbus.PARITY_EVEN
		case "O":
			conf.Parity = smodbus.PARITY_ODD
		default:
			conf.Parity = smodbus.PARITY_NONE
		}
	}

	client, err := smodbus.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("modbus client: %w", err)
	}
	if err := client.Open(); err != nil {
		return nil, fmt.Errorf("modbus client: open: %w", err)
	}

	return &SimonvetterClient{client: client, instrument: inst}, nil
}

// ReadHoldingRegisters issues one FC 3 request.
func (c *SimonvetterClient) ReadHoldingRegisters(ctx context.Context, start, count uint16, slaveID uint8) ([]uint16, error) {
	type result struct {
		regs []uint16
		err  error
	}
	done := make(chan result, 1)

	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		defer recordTimer("ReadRegisters", c.instrument)()

		if err := c.client.SetUnitId(slaveID); err != nil {
			done <- result{err: err}
			return
		}
		regs, err := c.client.ReadRegisters(start, count, smodbus.HOLDING_REGISTER)
		done <- result{regs: regs, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}

	if r.err != nil {
		for sentinel, code := range simonvetterExceptions {
			if errors.Is(r.err, sentinel) {
				return nil, &ExceptionError{Function: 3, Exception: code}
			}
		}
		return nil, r.err
	}
	return r.regs, nil
}

// Close closes the underlying port or connection.
func (c *SimonvetterClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}
