// cmd/regpoll/version.go
package main

import (
	"fmt"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "regpoll %s (revision %s, dirty=%t)\n",
				versioninfo.Short(), versioninfo.Revision, versioninfo.DirtyBuild)
		},
	}
}
