package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/service"
)

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "template <teachers|subjects|rooms|classes>",
		Short:     "Print an empty roster CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"teachers", "subjects", "rooms", "classes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := service.ParseRosterKind(args[0])
			if err != nil {
				return err
			}
			body, err := service.RosterTemplate(kind)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
}
