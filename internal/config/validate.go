// internal/config/validate.go
package config

import (
	"fmt"
	"regexp"
	"strings"
)

var topicSegment = regexp.MustCompile(`^[a-zA-Z0-9_/-]+$`)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: must be one of debug, info, warn, error", cfg.LogLevel)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format %q: must be json or console", cfg.LogFormat)
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Device

	switch strings.ToLower(d.Driver) {
	case "", "goburrow", "simonvetter":
	default:
		return fmt.Errorf("device %q: unsupported driver %q", d.ID, d.Driver)
	}

	switch strings.ToLower(d.Mode) {
	case "rtu":
		if d.Port == "" {
			return fmt.Errorf("device %q: rtu mode requires port", d.ID)
		}
		if d.BaudRate <= 0 {
			return fmt.Errorf("device %q: baud_rate must be > 0", d.ID)
		}
		if d.DataBits < 5 || d.DataBits > 8 {
			return fmt.Errorf("device %q: data_bits must be 5..8, got %d", d.ID, d.DataBits)
		}
		if d.StopBits != 1 && d.StopBits != 2 {
			return fmt.Errorf("device %q: stop_bits must be 1 or 2, got %d", d.ID, d.StopBits)
		}
		switch strings.ToUpper(d.Parity) {
		case "N", "E", "O", "NONE", "EVEN", "ODD":
		default:
			return fmt.Errorf("device %q: parity %q must be N, E or O", d.ID, d.Parity)
		}
	case "tcp":
		if d.Address == "" {
			return fmt.Errorf("device %q: tcp mode requires address", d.ID)
		}
	default:
		return fmt.Errorf("device %q: mode %q must be rtu or tcp", d.ID, d.Mode)
	}

	if d.TimeoutMs <= 0 {
		return fmt.Errorf("device %q: timeout_ms must be > 0", d.ID)
	}
	if d.SlaveID > 247 {
		return fmt.Errorf("device %q: slave_id %d out of range 0..247", d.ID, d.SlaveID)
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs <= 0 {
		return fmt.Errorf("poll.interval_ms must be > 0")
	}
	if cfg.Poll.MaxGap < 0 {
		return fmt.Errorf("poll.max_gap must be >= 0")
	}
	if cfg.Poll.MaxCount < 0 || cfg.Poll.MaxCount > 125 {
		return fmt.Errorf("poll.max_count must be 0..125, got %d", cfg.Poll.MaxCount)
	}

	// ------------------------------------------------------------
	// OUTPUTS
	// ------------------------------------------------------------

	o := cfg.Outputs

	if o.CSV.Enabled && o.CSV.Path == "" {
		return fmt.Errorf("outputs.csv: path required")
	}
	if o.JSONL.Enabled && o.JSONL.Path == "" {
		return fmt.Errorf("outputs.jsonl: path required")
	}
	switch strings.ToLower(o.Console.Style) {
	case "", "table", "plain":
	default:
		return fmt.Errorf("outputs.console: style %q must be table or plain", o.Console.Style)
	}
	if o.MQTT.Enabled {
		if o.MQTT.Host == "" || o.MQTT.Port <= 0 {
			return fmt.Errorf("outputs.mqtt: host and port required")
		}
		if !topicSegment.MatchString(o.MQTT.BaseTopic) {
			return fmt.Errorf("outputs.mqtt: invalid base_topic %q", o.MQTT.BaseTopic)
		}
		if o.MQTT.QoS > 2 {
			return fmt.Errorf("outputs.mqtt: qos must be 0, 1 or 2")
		}
	}

	// ------------------------------------------------------------
	// HTTP
	// ------------------------------------------------------------

	if cfg.HTTP.Enabled && (cfg.HTTP.Port == 0 || cfg.HTTP.Port > 65535) {
		return fmt.Errorf("http.port %d out of range", cfg.HTTP.Port)
	}

	return nil
}
