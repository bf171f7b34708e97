// internal/writer/types.go
package writer

import (
	"errors"

	"github.com/tamzrod/register-poller/internal/poller"
	"github.com/tamzrod/register-poller/internal/status"
)

// ErrFailedCycle is returned when a failed cycle reaches a data sink.
var ErrFailedCycle = errors.New("writer: failed cycle is never delivered")

// Writer delivers one successful poll cycle. Called once per cycle.
type Writer interface {
	Write(res poller.PollResult) error
}

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and delivers it verbatim.
type StatusWriter interface {
	WriteStatus(unitID string, s status.Snapshot) error
}
