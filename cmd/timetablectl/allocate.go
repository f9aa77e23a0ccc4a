package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/service"
)

func newAllocateCmd() *cobra.Command {
	var (
		file   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate a project file and report conflicts and shortfalls",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output %q", output)
			}
			payload, err := readPayload(file)
			if err != nil {
				return err
			}
			svc := service.NewTimetableService(nil, nil, nil, nil, nil, nil, nil, service.TimetableServiceConfig{})
			result, err := svc.Preview(cmd.Context(), dto.AllocateRequest{Payload: payload})
			if err != nil {
				return err
			}
			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return writeTable(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "project payload JSON, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "table or json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readPayload accepts either a bare payload or a project document with a payload field.
func readPayload(path string) (dto.ProjectPayloadRequest, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return dto.ProjectPayloadRequest{}, fmt.Errorf("read %s: %w", path, err)
	}

	var doc struct {
		Payload *dto.ProjectPayloadRequest `json:"payload"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return dto.ProjectPayloadRequest{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc.Payload != nil {
		return *doc.Payload, nil
	}
	var payload dto.ProjectPayloadRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		return dto.ProjectPayloadRequest{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return payload, nil
}

func writeTable(out io.Writer, result *dto.TimetableResponse) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tPERIOD\tCLASSES")
	for _, entry := range result.Entries {
		classes := strings.Join(entry.ClassIDs, ", ")
		if classes == "" {
			classes = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Day, entry.Period, classes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats := result.Stats
	fmt.Fprintf(out, "\n%d/%d slots occupied, %d placements for %d classes, %d unmet, %d conflicts\n",
		stats.OccupiedSlots, stats.Slots, stats.Placements, stats.Classes, stats.Unmet, stats.Conflicts)

	for _, c := range result.Conflicts {
		fmt.Fprintf(out, "conflict %s at %s/%s: %s\n", c.Kind, c.Slot.Day, c.Slot.Period, strings.Join(c.ClassIDs, ", "))
	}
	for _, s := range result.Shortfalls {
		fmt.Fprintf(out, "shortfall %s (%s): placed %d of %d\n", s.ClassID, s.Mode, s.Placed, s.Needed)
	}
	return nil
}
