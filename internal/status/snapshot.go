// internal/status/snapshot.go
package status

import "time"

// Snapshot is the device status as delivered to the HTTP and MQTT surfaces.
// It contains no logic.
type Snapshot struct {
	Health         uint16     `json:"health"`
	LastErrorCode  uint16     `json:"last_error_code"`
	SecondsInError uint16     `json:"seconds_in_error"`
	LastError      string     `json:"last_error,omitempty"`
	LastSuccess    *time.Time `json:"last_success,omitempty"` // nil until the first good cycle
	Cycles         uint64     `json:"cycles"`
	Failures       uint64     `json:"failures"`
}

// HealthName returns a label for a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	default:
		return "unknown"
	}
}

// OK reports whether the last cycle succeeded.
func (s Snapshot) OK() bool { return s.Health == HealthOK }
