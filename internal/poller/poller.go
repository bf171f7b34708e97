// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/register-poller/internal/decoder"
	"github.com/tamzrod/register-poller/internal/planner"
	"github.com/tamzrod/register-poller/internal/schema"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	SlaveID  uint8
	Interval time.Duration
	Limits   planner.Limits
}

// Factory builds a fresh transport. ONE attempt per call.
type Factory func() (Transport, error)

// exceptionError is implemented by transport errors carrying a device
// exception response. The link itself is still usable after one.
type exceptionError interface {
	ExceptionCode() uint8
}

// Poller runs the cycle plan -> read -> demux -> decode for one device.
// Plans are computed once: the registry is immutable.
type Poller struct {
	cfg     Config
	reg     *schema.Registry
	plans   []planner.ReadPlan
	members [][]schema.Address // registry addresses covered by plans[i]

	mu      sync.Mutex // guards client; Close may run while a cycle is in flight
	client  Transport
	factory Factory
	log     *zap.Logger
}

// New creates a poller with immutable config.
// client may be nil when factory is set; the first cycle then dials.
func New(cfg Config, reg *schema.Registry, client Transport, factory Factory, log *zap.Logger) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if reg == nil {
		return nil, errors.New("poller: registry required")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: transport or factory required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	addrs := reg.Addresses()
	plans, err := planner.Split(addrs, cfg.Limits)
	if err != nil {
		return nil, fmt.Errorf("poller: %w", err)
	}

	members := make([][]schema.Address, len(plans))
	for i, p := range plans {
		if p.Count > math.MaxUint16 {
			return nil, fmt.Errorf("poller: plan %s exceeds one request", p)
		}
		for _, a := range addrs {
			if p.Contains(a) {
				members[i] = append(members[i], a)
			}
		}
	}

	return &Poller{
		cfg:     cfg,
		reg:     reg,
		plans:   plans,
		members: members,
		client:  client,
		factory: factory,
		log:     log.With(zap.String("unit", cfg.UnitID)),
	}, nil
}

// Plans returns the reads one cycle performs.
func (p *Poller) Plans() []planner.ReadPlan {
	return append([]planner.ReadPlan(nil), p.plans...)
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle and no field is returned.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	start := time.Now()
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     start,
		Plans:  p.plans,
	}

	fields, err := p.cycle(ctx)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}

	// Commit only if every read and decode succeeded
	res.Fields = fields
	p.log.Debug("poll cycle complete",
		zap.Int("fields", len(fields)),
		zap.Int("reads", len(p.plans)),
		zap.Duration("took", res.Duration),
	)
	return res
}

func (p *Poller) cycle(ctx context.Context) ([]decoder.DecodedField, error) {
	values := make(map[schema.Address]uint16, p.reg.Len())

	for i, plan := range p.plans {
		words, err := p.read(ctx, plan)
		if err != nil {
			return nil, err
		}

		part, err := planner.Demux(plan, words, p.members[i])
		if err != nil {
			return nil, err
		}
		for a, w := range part {
			values[a] = w
		}
	}

	fields, err := decoder.DecodeAll(p.reg, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", planner.ErrInternal, err)
	}
	return fields, nil
}

func (p *Poller) read(ctx context.Context, plan planner.ReadPlan) ([]uint16, error) {
	fail := func(err error) error {
		return &TransportFailure{Plan: plan, SlaveID: p.cfg.SlaveID, Err: err}
	}

	// cancellation counts as a transport failure: nothing is emitted
	if err := ctx.Err(); err != nil {
		return nil, fail(err)
	}

	client, err := p.acquire()
	if err != nil {
		return nil, fail(err)
	}

	words, err := client.ReadHoldingRegisters(ctx, uint16(plan.Start), uint16(plan.Count), p.cfg.SlaveID)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		p.release(client, err)
		return nil, fail(err)
	}

	if len(words) != plan.Count {
		return nil, fail(fmt.Errorf("short response: got %d words, want %d", len(words), plan.Count))
	}
	return words, nil
}

// acquire returns the live transport, dialing through the factory if the
// previous one was discarded.
func (p *Poller) acquire() (Transport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	c, err := p.factory()
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	p.log.Info("transport connected")
	p.client = c
	return c, nil
}

// release discards used after a link-level failure so the next cycle
// reconnects. Device exceptions keep the link. A transport already
// replaced or closed is left alone.
func (p *Poller) release(used Transport, cause error) {
	var ex exceptionError
	if errors.As(cause, &ex) || p.factory == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil || p.client != used {
		return
	}
	if c, ok := p.client.(io.Closer); ok {
		if err := c.Close(); err != nil {
			p.log.Debug("transport close failed", zap.Error(err))
		}
	}
	p.client = nil
	p.log.Warn("transport discarded", zap.Error(cause))
}

// Close releases the current transport, if any.
// Safe to call while a cycle is in flight.
func (p *Poller) Close() error {
	p.mu.Lock()
	c, ok := p.client.(io.Closer)
	p.client = nil
	p.mu.Unlock()

	if ok {
		return c.Close()
	}
	return nil
}
