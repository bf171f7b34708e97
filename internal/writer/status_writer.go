// internal/writer/status_writer.go
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tamzrod/register-poller/internal/status"
)

// statusMessage is the retained JSON published on the status topic.
type statusMessage struct {
	Device string `json:"device"`
	State  string `json:"state"`
	status.Snapshot
}

// WriteStatus publishes the device status snapshot, retained.
// Unchanged snapshots are skipped. After a failed publish the next call
// re-asserts the snapshot even if it did not change.
func (w *MQTTWriter) WriteStatus(unitID string, s status.Snapshot) error {
	payload, err := json.Marshal(statusMessage{
		Device:   unitID,
		State:    status.HealthName(s.Health),
		Snapshot: s,
	})
	if err != nil {
		return fmt.Errorf("status writer: %w", err)
	}

	if !w.needFull && bytes.Equal(payload, w.lastStatus) {
		return nil
	}

	if err := w.pub.Publish(w.topics.Status(), w.qos, true, payload); err != nil {
		w.needFull = true
		return fmt.Errorf("status writer: %w", err)
	}

	w.needFull = false
	w.lastStatus = payload
	return nil
}
