// internal/planner/planner.go
package planner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tamzrod/register-poller/internal/schema"
)

var (
	// ErrEmptyRequest means the planner was asked to cover no addresses.
	ErrEmptyRequest = errors.New("planner: empty request")

	// ErrInternal marks an offset outside its plan. It must never happen when
	// planning and demultiplexing use the same address set.
	ErrInternal = errors.New("planner: internal invariant violated")
)

// MaxReadCount is the largest holding register read a Modbus PDU can carry (FC 3).
const MaxReadCount = 125

// ReadPlan is one contiguous holding register read.
// Geometry only: no semantics.
type ReadPlan struct {
	Start schema.Address
	Count int
}

// End is the last address covered (inclusive).
func (p ReadPlan) End() schema.Address {
	return p.Start + schema.Address(p.Count-1)
}

// Contains reports whether addr lies in [Start, Start+Count).
func (p ReadPlan) Contains(addr schema.Address) bool {
	off := int(addr) - int(p.Start)
	return off >= 0 && off < p.Count
}

// Offset is the index of addr inside the words returned for this plan.
func (p ReadPlan) Offset(addr schema.Address) (int, error) {
	if !p.Contains(addr) {
		return 0, fmt.Errorf("%w: address %s outside plan %s", ErrInternal, addr, p)
	}
	return int(addr) - int(p.Start), nil
}

func (p ReadPlan) String() string {
	return fmt.Sprintf("[%s..%s] (%d regs)", p.Start, p.End(), p.Count)
}

// Plan covers every requested address with one contiguous read:
// Start = min, Count = max - min + 1. Input order does not matter.
func Plan(addrs []schema.Address) (ReadPlan, error) {
	if len(addrs) == 0 {
		return ReadPlan{}, ErrEmptyRequest
	}

	lo, hi := addrs[0], addrs[0]
	for _, a := range addrs[1:] {
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}

	return ReadPlan{Start: lo, Count: int(hi) - int(lo) + 1}, nil
}

// Limits bounds the covering read when the address set is scattered.
// A zero field disables that bound.
type Limits struct {
	// MaxGap is the largest run of unrequested registers tolerated inside one read.
	MaxGap int
	// MaxCount is the largest number of registers per read.
	MaxCount int
}

// DefaultLimits keeps clustered maps in one read and splits only sparse ones.
var DefaultLimits = Limits{MaxGap: 32, MaxCount: MaxReadCount}

// Split covers the requested addresses with as few contiguous reads as the
// limits allow. Reads are returned in ascending address order.
// With zero limits, or when the set is clustered, the result is exactly
// one plan equal to Plan(addrs).
func Split(addrs []schema.Address, lim Limits) ([]ReadPlan, error) {
	if len(addrs) == 0 {
		return nil, ErrEmptyRequest
	}

	sorted := append([]schema.Address(nil), addrs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var plans []ReadPlan
	cur := ReadPlan{Start: sorted[0], Count: 1}
	prev := sorted[0]

	for _, a := range sorted[1:] {
		if a == prev {
			continue
		}

		gap := int(a) - int(prev) - 1
		span := int(a) - int(cur.Start) + 1

		if (lim.MaxGap > 0 && gap > lim.MaxGap) || (lim.MaxCount > 0 && span > lim.MaxCount) {
			plans = append(plans, cur)
			cur = ReadPlan{Start: a, Count: 1}
		} else {
			cur.Count = span
		}
		prev = a
	}

	return append(plans, cur), nil
}

// Demux maps each requested address to its raw word using address offsets.
// words must be exactly the RawWordSet returned for plan.
func Demux(plan ReadPlan, words []uint16, addrs []schema.Address) (map[schema.Address]uint16, error) {
	if len(words) != plan.Count {
		return nil, fmt.Errorf("%w: plan %s got %d words", ErrInternal, plan, len(words))
	}

	out := make(map[schema.Address]uint16, len(addrs))
	for _, a := range addrs {
		off, err := plan.Offset(a)
		if err != nil {
			return nil, err
		}
		out[a] = words[off]
	}
	return out, nil
}
