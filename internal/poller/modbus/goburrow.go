// internal/poller/modbus/goburrow.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goburrow/modbus"
)

// goburrowHandler is what both the RTU and TCP handlers of goburrow offer.
type goburrowHandler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// GoburrowClient is one serial (or TCP) link driven by github.com/goburrow/modbus.
// It serializes requests because it mutates the slave id per read.
type GoburrowClient struct {
	mu         sync.Mutex
	handler    goburrowHandler
	client     modbus.Client
	setSlave   func(id uint8)
	instrument []Instrument
}

func newGoburrowClient(cfg Config, inst []Instrument) (*GoburrowClient, error) {
	c := &GoburrowClient{instrument: inst}

	switch cfg.Mode {
	case ModeTCP:
		h := modbus.NewTCPClientHandler(cfg.Address)
		h.Timeout = cfg.Timeout
		c.handler = h
		c.setSlave = func(id uint8) { h.SlaveId = id }
	default:
		h := modbus.NewRTUClientHandler(cfg.Port)
		h.BaudRate = cfg.BaudRate
		h.DataBits = cfg.DataBits
		h.Parity = normalizeParity(cfg.Parity)
		h.StopBits = cfg.StopBits
		h.Timeout = cfg.Timeout
		c.handler = h
		c.setSlave = func(id uint8) { h.SlaveId = id }
	}

	if err := c.handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbus client: connect: %w", err)
	}
	c.client = modbus.NewClient(c.handler)
	return c, nil
}

// ReadHoldingRegisters issues one FC 3 request.
// goburrow has no context support: the handler timeout bounds the call and
// cancellation abandons the in-flight request.
func (c *GoburrowClient) ReadHoldingRegisters(ctx context.Context, start, count uint16, slaveID uint8) ([]uint16, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		defer recordTimer("ReadHoldingRegisters", c.instrument)()

		c.setSlave(slaveID)
		data, err := c.client.ReadHoldingRegisters(start, count)
		done <- result{data: data, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}

	if r.err != nil {
		var me *modbus.ModbusError
		if errors.As(r.err, &me) {
			return nil, &ExceptionError{Function: me.FunctionCode, Exception: me.ExceptionCode}
		}
		return nil, r.err
	}
	if len(r.data) != 2*int(count) {
		return nil, fmt.Errorf("modbus: read-registers payload %d bytes, want %d", len(r.data), 2*int(count))
	}
	return unpackRegisters(r.data), nil
}

// Close closes the underlying port or connection.
func (c *GoburrowClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}
