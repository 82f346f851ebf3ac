package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/driveshift/driveshift/internal/handoff"
	"github.com/driveshift/driveshift/internal/history"
)

func newTransferCmd() *cobra.Command {
	var (
		to              string
		delay           time.Duration
		continueOnError bool
		haltOnError     bool
		notify          bool
		yes             bool
	)

	cmd := &cobra.Command{
		Use:   "transfer <file-id>...",
		Short: "Transfer ownership of files to another account",
		Long: "Transfers ownership of each file to the target account using the " +
			"two-step grant-then-promote sequence. Files are processed one at a " +
			"time with a pacing delay between them.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handoff.BatchOptions{
				Delay:           resolvedCfg.Delay,
				ContinueOnError: resolvedCfg.ContinueOnError,
				Notify:          resolvedCfg.Notify || notify,
			}

			// Flag overrides apply only when explicitly set.
			if cmd.Flags().Changed("delay") {
				opts.Delay = delay
			}

			if cmd.Flags().Changed("continue-on-error") {
				opts.ContinueOnError = continueOnError
			}

			if cmd.Flags().Changed("halt-on-error") {
				opts.ContinueOnError = !haltOnError
			}

			return runTransfer(args, to, opts, yes)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target account email (required)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between transfers (negative disables pacing)")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep going past per-file failures")
	cmd.Flags().BoolVar(&haltOnError, "halt-on-error", false, "stop the batch at the first failure")
	cmd.Flags().BoolVar(&notify, "notify", false, "have Drive email the target about the new access")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	_ = cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("continue-on-error", "halt-on-error")

	return cmd
}

func runTransfer(fileIDs []string, target string, opts handoff.BatchOptions, yes bool) error {
	logger := buildLogger()
	ctx := context.Background()

	if !handoff.ValidEmail(target) {
		return fmt.Errorf("invalid target email %q", target)
	}

	account, err := requireAccount()
	if err != nil {
		return err
	}

	if strings.EqualFold(account, target) {
		return fmt.Errorf("target %s is the source account itself", target)
	}

	client, err := newDriveClient(ctx, account, logger)
	if err != nil {
		return err
	}

	// Preview the batch before asking for confirmation. --yes skips the
	// prompt and with it the extra read-only round trips.
	if !yes {
		if err := previewTransfers(ctx, client, fileIDs, target); err != nil {
			return err
		}
	}

	ok, err := confirmTransfer(os.Stdin, os.Stderr, len(fileIDs), target, yes)
	if err != nil {
		return err
	}

	if !ok {
		statusf("Aborted.\n")
		return nil
	}

	opts.OnOutcome = func(o handoff.TransferOutcome, position, total int) {
		name := o.FileName
		if name == "" {
			name = o.FileID
		}

		if o.Success {
			statusf("[%d/%d] %s: %s\n", position, total, name, o.Message)
		} else {
			statusf("[%d/%d] %s: failed: %s\n", position, total, name, o.ErrorMessage())
		}
	}

	coordinator := handoff.NewCoordinator(client, opts, logger)
	summary := coordinator.Run(ctx, fileIDs, target)

	recordHistory(ctx, logger, account, target, summary)

	if err := renderSummary(os.Stdout, summary, flagJSON); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d transfers failed", summary.Failed, summary.Total)
	}

	return nil
}

// previewTransfers runs the read-only precondition checks on every file and
// prints what would change. Any failing file aborts the batch before a
// single permission is touched.
func previewTransfers(ctx context.Context, svc handoff.DriveService, fileIDs []string, target string) error {
	rows := make([][]string, 0, len(fileIDs))
	failures := 0

	for _, fileID := range fileIDs {
		pre, err := handoff.ValidatePreconditions(ctx, svc, fileID, target)
		if err != nil {
			failures++

			rows = append(rows, []string{fileID, "", err.Error()})

			continue
		}

		rows = append(rows, []string{fileID, pre.FileName, pre.CurrentOwner})
	}

	printTable(os.Stderr, []string{"FILE ID", "NAME", "OWNER"}, rows)

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed precondition checks — nothing transferred", failures, len(fileIDs))
	}

	return nil
}

// confirmTransfer prompts on out and reads a y/N answer from in. Ownership
// transfer is irreversible from the source account's side, so a batch never
// starts without an explicit go-ahead.
func confirmTransfer(in *os.File, out io.Writer, count int, target string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}

	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		return false, fmt.Errorf("stdin is not a terminal — pass --yes to transfer without confirmation")
	}

	noun := "file"
	if count != 1 {
		noun = "files"
	}

	fmt.Fprintf(out, "Transfer ownership of %d %s to %s? [y/N] ", count, noun, target)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes", nil
}

// recordHistory writes the batch to the ledger. Ledger failures are logged,
// never fatal — the transfers already happened.
func recordHistory(ctx context.Context, logger *slog.Logger, account, target string, summary handoff.BatchSummary) {
	if !resolvedCfg.HistoryEnabled || len(summary.Outcomes) == 0 {
		return
	}

	store, err := history.Open(resolvedCfg.HistoryDBPath, logger)
	if err != nil {
		logger.Warn("opening history database failed", "error", err)
		return
	}
	defer store.Close()

	batchID := history.NewBatchID()

	if err := store.RecordBatch(ctx, batchID, account, target, summary.Outcomes); err != nil {
		logger.Warn("recording history failed", "error", err)
		return
	}

	logger.Info("batch recorded", "batch_id", batchID, "rows", len(summary.Outcomes))
}

// summaryOutput is the JSON schema for `transfer --json`.
type summaryOutput struct {
	Total       int             `json:"total"`
	Successful  int             `json:"successful"`
	Failed      int             `json:"failed"`
	Unprocessed int             `json:"unprocessed"`
	Outcomes    []outcomeOutput `json:"outcomes"`
}

type outcomeOutput struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// renderSummary writes the batch result to w as text or JSON.
func renderSummary(w io.Writer, summary handoff.BatchSummary, jsonOut bool) error {
	if jsonOut {
		out := summaryOutput{
			Total:       summary.Total,
			Successful:  summary.Successful,
			Failed:      summary.Failed,
			Unprocessed: summary.Unprocessed,
			Outcomes:    make([]outcomeOutput, 0, len(summary.Outcomes)),
		}

		for _, o := range summary.Outcomes {
			out.Outcomes = append(out.Outcomes, outcomeOutput{
				FileID:   o.FileID,
				FileName: o.FileName,
				Success:  o.Success,
				Message:  o.Message,
				Error:    o.ErrorMessage(),
			})
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Transferred %d of %d.", summary.Successful, summary.Total)

	if summary.Failed > 0 {
		fmt.Fprintf(w, " %d failed.", summary.Failed)
	}

	if summary.Unprocessed > 0 {
		fmt.Fprintf(w, " %d not attempted.", summary.Unprocessed)
	}

	fmt.Fprintln(w)

	return nil
}
