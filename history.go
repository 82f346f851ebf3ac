package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveshift/driveshift/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent ownership transfers",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runHistory(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", history.DefaultRecentLimit, "maximum number of entries to show")

	return cmd
}

func runHistory(limit int) error {
	logger := buildLogger()
	ctx := context.Background()

	if !resolvedCfg.HistoryEnabled {
		return fmt.Errorf("history is disabled in config ([history] enabled = false)")
	}

	store, err := history.Open(resolvedCfg.HistoryDBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		statusf("No transfers recorded.\n")
		return nil
	}

	printHistoryTable(entries)

	return nil
}

func printHistoryTable(entries []history.Entry) {
	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		result := "ok"
		if !e.Success {
			result = e.Error
		}

		name := e.FileName
		if name == "" {
			name = e.FileID
		}

		rows = append(rows, []string{
			formatTime(e.CreatedAt.Local()),
			name,
			e.TargetEmail,
			result,
		})
	}

	printTable(os.Stdout, []string{"TIME", "FILE", "TARGET", "RESULT"}, rows)
}
