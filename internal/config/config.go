// internal/config/config.go
package config

type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Device  DeviceConfig  `mapstructure:"device" yaml:"device"`
	Poll    PollConfig    `mapstructure:"poll" yaml:"poll"`
	Schema  SchemaConfig  `mapstructure:"schema" yaml:"schema"`
	Outputs OutputsConfig `mapstructure:"outputs" yaml:"outputs"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID     string `mapstructure:"id" yaml:"id"`
	Driver string `mapstructure:"driver" yaml:"driver"` // goburrow | simonvetter
	Mode   string `mapstructure:"mode" yaml:"mode"`     // rtu | tcp

	// RTU
	Port     string `mapstructure:"port" yaml:"port"`
	BaudRate int    `mapstructure:"baud_rate" yaml:"baud_rate"`
	DataBits int    `mapstructure:"data_bits" yaml:"data_bits"`
	Parity   string `mapstructure:"parity" yaml:"parity"`
	StopBits int    `mapstructure:"stop_bits" yaml:"stop_bits"`

	// TCP
	Address string `mapstructure:"address" yaml:"address"`

	SlaveID   uint8 `mapstructure:"slave_id" yaml:"slave_id"`
	TimeoutMs int   `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `mapstructure:"interval_ms" yaml:"interval_ms"`

	// Read splitting for scattered maps; 0 disables the bound.
	MaxGap   int `mapstructure:"max_gap" yaml:"max_gap"`
	MaxCount int `mapstructure:"max_count" yaml:"max_count"`
}

// ---- SCHEMA ----

type SchemaConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // empty => built-in heat pump map
}

// ---- OUTPUTS ----

type OutputsConfig struct {
	CSV     CSVOutput     `mapstructure:"csv" yaml:"csv"`
	Console ConsoleOutput `mapstructure:"console" yaml:"console"`
	JSONL   JSONLOutput   `mapstructure:"jsonl" yaml:"jsonl"`
	MQTT    MQTTOutput    `mapstructure:"mqtt" yaml:"mqtt"`
}

type CSVOutput struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
	Append  bool   `mapstructure:"append" yaml:"append"` // false => rewrite the file every cycle
}

type ConsoleOutput struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Style   string `mapstructure:"style" yaml:"style"` // table | plain
}

type JSONLOutput struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"` // "-" => stdout
}

type MQTTOutput struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	Username  string `mapstructure:"username" yaml:"username"`
	Password  string `mapstructure:"password" yaml:"password"`
	BaseTopic string `mapstructure:"base_topic" yaml:"base_topic"`
	QoS       byte   `mapstructure:"qos" yaml:"qos"`
	Retain    bool   `mapstructure:"retain" yaml:"retain"`
	TimeoutMs int    `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    uint `mapstructure:"port" yaml:"port"`
	Log     bool `mapstructure:"log" yaml:"log"`
}
