package commands

import (
	"fmt"
	"sentry-itest/lib/htmlutil"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	jsonCmd.Flags().Bool("summary", false, "print a table of event ids and messages instead of raw JSON")
	rootCmd.AddCommand(dsnCmd, eventsCmd, tagsCmd, clearCmd, jsonCmd)
}

// eventSummary is the part of a stored event the json command tabulates.
type eventSummary struct {
	EventId string `json:"event_id"`
	Culprit string `json:"culprit"`
	Message string `json:"message"`
}

func summarizeEvents(events htmlutil.RawJsonArray) ([]eventSummary, error) {
	summaries := make([]eventSummary, len(events))
	for i, e := range events {
		summary, err := htmlutil.Decode[eventSummary](e)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		summaries[i] = summary
	}
	return summaries, nil
}

var dsnCmd = &cobra.Command{
	Use:   "dsn <project_slug>",
	Short: "Prints the DSN of a project.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		dsn, err := client.GetDsn(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(dsn)
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <project_slug>",
	Short: "Lists the unresolved events of a project.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		events, err := client.GetEvents(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Group", "Count", "Level", "Logger", "Title", "Message"})
		for _, e := range events {
			level := "-"
			if e.LevelName != nil {
				level = *e.LevelName
			}
			t.AppendRow(table.Row{e.Group, e.Count, level, e.Logger, e.Title, e.Message})
		}
		t.Render()
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags <project_slug>",
	Short: "Lists the tag keys a project can filter on.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		tags, err := client.GetAvailableTags(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Tag"})
		for i, tag := range tags {
			t.AppendRow(table.Row{i + 1, tag})
		}
		t.Render()
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <project_id>",
	Short: "Removes every event of a project.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		ok, err := client.Clear(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("the dashboard refused to clear project %s", args[0])
		}
		return nil
	},
}

var jsonCmd = &cobra.Command{
	Use:   "json <project_slug> <group>",
	Short: "Prints the raw JSON events of a group, one per line.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("group must be a number: %w", err)
		}
		client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		events, err := client.GetRawJson(cmd.Context(), args[0], group)
		if err != nil {
			return err
		}
		if events == nil {
			fmt.Println("(empty)")
			return nil
		}

		summary, err := cmd.Flags().GetBool("summary")
		if err != nil {
			return err
		}
		if summary {
			summaries, err := summarizeEvents(events)
			if err != nil {
				return err
			}
			t := newTable()
			t.AppendHeader(table.Row{"Event", "Culprit", "Message"})
			for _, s := range summaries {
				t.AppendRow(table.Row{s.EventId, s.Culprit, s.Message})
			}
			t.Render()
			return nil
		}

		for _, e := range events {
			fmt.Println(string(e))
		}
		return nil
	},
}
