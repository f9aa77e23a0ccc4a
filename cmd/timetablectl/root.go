package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "timetablectl",
		Short:         "Offline tooling for the timetable service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file read before the process environment")

	root.AddCommand(
		newAllocateCmd(),
		newTokenCmd(opts),
		newTemplateCmd(),
	)
	return root
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.LoadFile(o.envFile)
}
