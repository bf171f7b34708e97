// internal/config/normalize.go
package config

import (
	"strings"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	d := &cfg.Device
	if d.ID == "" {
		d.ID = "device"
	}
	d.Driver = strings.ToLower(d.Driver)
	if d.Driver == "" {
		d.Driver = "goburrow"
	}
	d.Mode = strings.ToLower(d.Mode)

	switch strings.ToUpper(d.Parity) {
	case "E", "EVEN":
		d.Parity = "E"
	case "O", "ODD":
		d.Parity = "O"
	default:
		d.Parity = "N"
	}

	cfg.Outputs.Console.Style = strings.ToLower(cfg.Outputs.Console.Style)
	if cfg.Outputs.Console.Style == "" {
		cfg.Outputs.Console.Style = "table"
	}

	// topics never carry a trailing separator
	cfg.Outputs.MQTT.BaseTopic = strings.Trim(cfg.Outputs.MQTT.BaseTopic, "/")
}
