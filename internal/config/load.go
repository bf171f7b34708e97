// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. REGPOLL_DEVICE_PORT.
const EnvPrefix = "regpoll"

// Load layers defaults, the optional config file and the environment.
// path may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// setDefaults mirrors the serial settings the heat pump ships with.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("device.id", "heatpump")
	v.SetDefault("device.driver", "goburrow")
	v.SetDefault("device.mode", "rtu")
	v.SetDefault("device.port", "/dev/ttyUSB0")
	v.SetDefault("device.baud_rate", 9600)
	v.SetDefault("device.data_bits", 8)
	v.SetDefault("device.parity", "N")
	v.SetDefault("device.stop_bits", 1)
	v.SetDefault("device.address", "")
	v.SetDefault("device.slave_id", 1)
	v.SetDefault("device.timeout_ms", 1000)

	v.SetDefault("poll.interval_ms", 10000)
	v.SetDefault("poll.max_gap", 32)
	v.SetDefault("poll.max_count", 125)

	v.SetDefault("schema.path", "")

	v.SetDefault("outputs.csv.enabled", true)
	v.SetDefault("outputs.csv.path", "modbus_data.csv")
	v.SetDefault("outputs.csv.append", false)
	v.SetDefault("outputs.console.enabled", false)
	v.SetDefault("outputs.console.style", "table")
	v.SetDefault("outputs.jsonl.enabled", false)
	v.SetDefault("outputs.jsonl.path", "-")
	v.SetDefault("outputs.mqtt.enabled", false)
	v.SetDefault("outputs.mqtt.host", "localhost")
	v.SetDefault("outputs.mqtt.port", 1883)
	v.SetDefault("outputs.mqtt.username", "")
	v.SetDefault("outputs.mqtt.password", "")
	v.SetDefault("outputs.mqtt.base_topic", "regpoll")
	v.SetDefault("outputs.mqtt.qos", 0)
	v.SetDefault("outputs.mqtt.retain", true)
	v.SetDefault("outputs.mqtt.timeout_ms", 5000)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.log", false)
}

// Redacted returns a copy safe to log.
func Redacted(cfg Config) Config {
	if cfg.Outputs.MQTT.Username != "" {
		cfg.Outputs.MQTT.Username = "*redacted*"
	}
	if cfg.Outputs.MQTT.Password != "" {
		cfg.Outputs.MQTT.Password = "*redacted*"
	}
	return cfg
}
