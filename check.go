package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveshift/driveshift/internal/handoff"
)

func newCheckCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "check <file-id>...",
		Short: "Verify files are transferable without changing anything",
		Long: "Runs the read-only precondition checks a transfer would run: the " +
			"target email parses, each file is reachable, and each has an owner. " +
			"No permissions are created or modified.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCheck(args, to)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target account email (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// checkResult is one row of check output.
type checkResult struct {
	FileID       string `json:"file_id"`
	FileName     string `json:"file_name,omitempty"`
	CurrentOwner string `json:"current_owner,omitempty"`
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
}

func runCheck(fileIDs []string, target string) error {
	logger := buildLogger()
	ctx := context.Background()

	account, err := requireAccount()
	if err != nil {
		return err
	}

	client, err := newDriveClient(ctx, account, logger)
	if err != nil {
		return err
	}

	results := make([]checkResult, 0, len(fileIDs))
	failures := 0

	for _, fileID := range fileIDs {
		pre, err := handoff.ValidatePreconditions(ctx, client, fileID, target)
		if err != nil {
			failures++

			results = append(results, checkResult{FileID: fileID, Error: err.Error()})

			continue
		}

		results = append(results, checkResult{
			FileID:       pre.FileID,
			FileName:     pre.FileName,
			CurrentOwner: pre.CurrentOwner,
			OK:           true,
		})
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
	} else {
		printCheckTable(results)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed precondition checks", failures, len(fileIDs))
	}

	return nil
}

func printCheckTable(results []checkResult) {
	rows := make([][]string, 0, len(results))

	for _, r := range results {
		status := "ok"
		if !r.OK {
			status = r.Error
		}

		rows = append(rows, []string{r.FileID, r.FileName, r.CurrentOwner, status})
	}

	printTable(os.Stdout, []string{"FILE ID", "NAME", "OWNER", "STATUS"}, rows)
}
