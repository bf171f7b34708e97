// cmd/regpoll/schema.go
package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tamzrod/register-poller/internal/planner"
	"github.com/tamzrod/register-poller/internal/schema"
)

func newSchemaCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate the register schema and print it with its read plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.schemaPath
			limits := planner.DefaultLimits

			// with a config the plan shown is the one poll will read
			if flags.configPath != "" {
				cfg, err := loadConfig(flags)
				if err != nil {
					return err
				}
				path = cfg.Schema.Path
				limits = planner.Limits{MaxGap: cfg.Poll.MaxGap, MaxCount: cfg.Poll.MaxCount}
			}

			reg, err := loadSchema(path)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			plans, err := planner.Split(reg.Addresses(), limits)
			if err != nil {
				return err
			}
			for _, p := range plans {
				fmt.Fprintf(w, "# read %s\n", p)
			}

			src := schema.Source{Registers: schema.Entries(reg)}
			switch format {
			case "toml":
				return toml.NewEncoder(w).Encode(src)
			case "yaml", "":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(src); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unsupported format %q (yaml or toml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or toml")
	return cmd
}
