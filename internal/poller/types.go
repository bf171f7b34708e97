// internal/poller/types.go
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/tamzrod/register-poller/internal/decoder"
	"github.com/tamzrod/register-poller/internal/planner"
)

// Transport is the register read the poller depends on.
// One call returns count words in ascending address order starting at start.
type Transport interface {
	ReadHoldingRegisters(ctx context.Context, start, count uint16, slaveID uint8) ([]uint16, error)
}

// TransportFailure aborts a poll cycle: the transport reported an error,
// returned a malformed word set, or the cycle was cancelled.
type TransportFailure struct {
	Plan    planner.ReadPlan
	SlaveID uint8
	Err     error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("transport failure: slave=%d plan=%s: %v", e.SlaveID, e.Plan, e.Err)
}

func (e *TransportFailure) Unwrap() error { return e.Err }

// PollResult is a snapshot produced by one poll cycle.
// Either Fields is complete (one entry per registry address) or Err is set
// and Fields is empty.
type PollResult struct {
	UnitID   string
	At       time.Time
	Duration time.Duration

	Plans  []planner.ReadPlan
	Fields []decoder.DecodedField
	Err    error // non-nil means the poll cycle failed
}
