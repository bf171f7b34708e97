// internal/status/tracker_test.go
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/register-poller/internal/planner"
	"github.com/tamzrod/register-poller/internal/poller"
	"github.com/tamzrod/register-poller/internal/schema"
)

type coded struct{ code uint16 }

func (c coded) Error() string { return fmt.Sprintf("coded %d", c.code) }
func (c coded) Code() uint16  { return c.code }

type rawException struct{}

func (rawException) Error() string        { return "exception" }
func (rawException) ExceptionCode() uint8 { return 3 }

func failure(err error) error {
	return &poller.TransportFailure{Plan: planner.ReadPlan{Start: 3, Count: 69}, SlaveID: 1, Err: err}
}

func TestCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want uint16
	}{
		{"nil", nil, CodeNone},
		{"plain", errors.New("boom"), CodeGeneric},
		{"transport", failure(errors.New("serial timeout")), CodeTransport},
		{"deadline", failure(context.DeadlineExceeded), CodeTimeout},
		{"cancelled", failure(context.Canceled), CodeCancelled},
		{"internal", fmt.Errorf("%w: offset", planner.ErrInternal), CodeInternal},
		{"empty", planner.ErrEmptyRequest, CodeEmptyRequest},
		{"schema", fmt.Errorf("x: %w", schema.ErrInvalidSchema), CodeInvalidSchema},
		{"unknown address", schema.ErrUnknownAddress, CodeUnknownAddress},
		{"coder passthrough", failure(coded{0x102}), 0x102},
		{"exception", failure(rawException{}), 0x103},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Code(tc.err))
		})
	}
}

func TestTracker_BootState(t *testing.T) {
	tr := NewTracker()
	s := tr.Snapshot()

	assert.Equal(t, HealthUnknown, s.Health)
	assert.False(t, s.OK())
	assert.Equal(t, "unknown", HealthName(s.Health))

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "last_success")
}

func TestTracker_FailureThenRecovery(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.Observe(poller.PollResult{Err: failure(errors.New("crc"))}))
	assert.True(t, tr.Tick())
	assert.True(t, tr.Tick())

	s := tr.Snapshot()
	assert.Equal(t, HealthError, s.Health)
	assert.Equal(t, CodeTransport, s.LastErrorCode)
	assert.Equal(t, uint16(2), s.SecondsInError)
	assert.Contains(t, s.LastError, "crc")
	assert.Equal(t, uint64(1), s.Failures)

	// same failure again changes nothing delivered
	assert.False(t, tr.Observe(poller.PollResult{Err: failure(errors.New("crc"))}))

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, tr.Observe(poller.PollResult{At: at}))

	s = tr.Snapshot()
	assert.True(t, s.OK())
	assert.Equal(t, CodeNone, s.LastErrorCode)
	assert.Zero(t, s.SecondsInError)
	assert.Empty(t, s.LastError)
	require.NotNil(t, s.LastSuccess)
	assert.Equal(t, at, *s.LastSuccess)
	assert.Equal(t, uint64(3), s.Cycles)
	assert.Equal(t, uint64(2), s.Failures)

	assert.False(t, tr.Tick(), "no ticking while OK")
}

func TestTracker_SecondsSaturate(t *testing.T) {
	tr := NewTracker()
	tr.Observe(poller.PollResult{Err: errors.New("down")})

	for i := 0; i < int(SecondsInErrorMax); i++ {
		tr.Tick()
	}
	assert.Equal(t, SecondsInErrorMax, tr.Snapshot().SecondsInError)
	assert.False(t, tr.Tick())
	assert.Equal(t, SecondsInErrorMax, tr.Snapshot().SecondsInError)
}
