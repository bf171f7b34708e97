// cmd/regpoll/main.go
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tamzrod/register-poller/internal/config"
	"github.com/tamzrod/register-poller/internal/schema"
)

type rootFlags struct {
	configPath string
	envFile    string
	schemaPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "regpoll",
		Short:        "Poll Modbus holding registers and publish decoded readings",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "runtime config file (yaml)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "dotenv file loaded before the environment is read (default .env if present)")
	root.PersistentFlags().StringVar(&flags.schemaPath, "schema", "", "register schema file (yaml or toml), overrides schema.path")

	root.AddCommand(
		newPollCmd(flags),
		newOnceCmd(flags),
		newSchemaCmd(flags),
		newVersionCmd(),
	)
	return root
}

// --------------------
// Load + validate config
// --------------------

func loadConfig(flags *rootFlags) (*config.Config, error) {
	if err := loadEnvFile(flags.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if flags.schemaPath != "" {
		cfg.Schema.Path = flags.schemaPath
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// loadEnvFile loads an explicit dotenv file, or .env when it exists.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func loadSchema(path string) (*schema.Registry, error) {
	if path == "" {
		return schema.Default()
	}
	return schema.Load(path)
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	if format == "console" {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zapCfg.Build()
}
