// internal/poller/modbus/client.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Drivers.
const (
	DriverGoburrow    = "goburrow"
	DriverSimonvetter = "simonvetter"
)

// Link modes.
const (
	ModeRTU = "rtu"
	ModeTCP = "tcp"
)

// Client implements poller.Transport over a Modbus master.
// Adapters are geometry-only: they issue FC 3 reads and unpack raw words.
type Client interface {
	ReadHoldingRegisters(ctx context.Context, start, count uint16, slaveID uint8) ([]uint16, error)
	Close() error
}

// Config is minimal transport config.
type Config struct {
	Driver string
	Mode   string

	// RTU
	Port     string
	BaudRate int
	DataBits int
	Parity   string // "N", "E", "O"
	StopBits int

	// TCP
	Address string // "192.168.1.10:502"

	Timeout time.Duration
}

// New connects a Modbus master with the configured driver.
// ONE connect attempt per call.
func New(cfg Config, log *zap.Logger) (Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Mode {
	case ModeRTU:
		if cfg.Port == "" {
			return nil, errors.New("modbus client: serial port required")
		}
	case ModeTCP:
		if cfg.Address == "" {
			return nil, errors.New("modbus client: tcp address required")
		}
	default:
		return nil, fmt.Errorf("modbus client: unsupported mode %q", cfg.Mode)
	}

	inst := []Instrument{traceLoggerInstrumentation(log.With(
		zap.String("driver", cfg.Driver),
		zap.String("mode", cfg.Mode),
	))}

	switch cfg.Driver {
	case DriverGoburrow, "":
		return newGoburrowClient(cfg, inst)
	case DriverSimonvetter:
		return newSimonvetterClient(cfg, inst)
	default:
		return nil, fmt.Errorf("modbus client: unsupported driver %q", cfg.Driver)
	}
}

// ExceptionError is a Modbus exception response from the device.
// The link stays usable after one.
type ExceptionError struct {
	Function  uint8
	Exception uint8
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus exception: fc=%d code=%d (%s)", e.Function, e.Exception, exceptionName(e.Exception))
}

// ExceptionCode is the raw exception code sent by the device.
func (e *ExceptionError) ExceptionCode() uint8 { return e.Exception }

// Code is the status code reported for this exception: 0x100 | exception.
func (e *ExceptionError) Code() uint16 { return 0x100 | uint16(e.Exception) }

func exceptionName(code uint8) string {
	switch code {
	case 1:
		return "illegal function"
	case 2:
		return "illegal data address"
	case 3:
		return "illegal data value"
	case 4:
		return "server device failure"
	case 5:
		return "acknowledge"
	case 6:
		return "server device busy"
	case 8:
		return "memory parity error"
	case 10:
		return "gateway path unavailable"
	case 11:
		return "gateway target failed to respond"
	default:
		return "unknown"
	}
}

// ---- instrumentation ----

// Instrument observes the latency of each device call.
type Instrument struct {
	RecordTime func(fnName string, took time.Duration)
}

func recordTimer(name string, instrument []Instrument) func() {
	if len(instrument) == 0 {
		return func() {}
	}

	start := time.Now()
	return func() {
		took := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, took)
		}
	}
}

func traceLoggerInstrumentation(log *zap.Logger) Instrument {
	return Instrument{
		RecordTime: func(fnName string, took time.Duration) {
			log.Debug("modbus call", zap.String("fn", fnName), zap.Int64("millis", took.Milliseconds()))
		},
	}
}

// ---- helpers (pure geometry) ----

// unpackRegisters converts big-endian register bytes to words.
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}

func normalizeParity(p string) string {
	switch strings.ToUpper(p) {
	case "E", "EVEN":
		return "E"
	case "O", "ODD":
		return "O"
	default:
		return "N"
	}
}
