package handoff

import (
	"context"
	"log/slog"
	"time"
)

// DefaultDelay is the inter-transfer pacing used when BatchOptions.Delay is
// zero. One second keeps a batch comfortably under the Drive API's
// per-user-per-second quota.
const DefaultDelay = 1 * time.Second

// BatchOptions control a batch run.
type BatchOptions struct {
	// Delay is the fixed pause between consecutive transfers. Zero means
	// DefaultDelay; pacing is disabled only by an explicit negative value.
	// This is rate-limit pacing, not retry backoff — there is no retry at
	// this layer.
	Delay time.Duration

	// ContinueOnError keeps the batch going past per-file failures. When
	// false the batch halts at the first failure, leaving trailing items
	// unprocessed.
	ContinueOnError bool

	// Notify is passed through to each transfer's bootstrap writer grant.
	Notify bool

	// OnOutcome, when set, is called after each processed item with its
	// outcome and 1-based position. The CLI uses it for progress output.
	OnOutcome func(outcome TransferOutcome, position, total int)
}

// Coordinator sequences the transfer protocol over a list of file IDs,
// strictly in input order and strictly one at a time — the Drive API's
// rate limits motivate pacing, not parallelism.
type Coordinator struct {
	svc    DriveService
	opts   BatchOptions
	logger *slog.Logger

	// sleepFunc waits between transfers. Defaults to a context-aware timer;
	// tests override it to avoid real delays.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewCoordinator creates a batch coordinator. A zero Delay is replaced with
// DefaultDelay, a negative one disables pacing.
func NewCoordinator(svc DriveService, opts BatchOptions, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}

	if opts.Delay < 0 {
		opts.Delay = 0
	}

	return &Coordinator{
		svc:       svc,
		opts:      opts,
		logger:    logger,
		sleepFunc: sleepCtx,
	}
}

// Run transfers ownership of every file in fileIDs to targetEmail.
// Outcomes preserve input order. The batch holds no persisted progress
// state: a halted run reports unprocessed items and nothing more.
func (c *Coordinator) Run(ctx context.Context, fileIDs []string, targetEmail string) BatchSummary {
	summary := BatchSummary{
		Total:    len(fileIDs),
		Outcomes: make([]TransferOutcome, 0, len(fileIDs)),
	}

	c.logger.Info("starting batch",
		slog.Int("files", len(fileIDs)),
		slog.String("target", targetEmail),
		slog.Duration("delay", c.opts.Delay),
		slog.Bool("continue_on_error", c.opts.ContinueOnError),
	)

	for i, fileID := range fileIDs {
		outcome := c.transferOne(ctx, fileID, targetEmail)

		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}

		if c.opts.OnOutcome != nil {
			c.opts.OnOutcome(outcome, i+1, len(fileIDs))
		}

		if !outcome.Success && !c.opts.ContinueOnError {
			c.logger.Warn("halting batch on first failure",
				slog.String("file_id", fileID),
				slog.Int("unprocessed", len(fileIDs)-i-1),
			)

			break
		}

		// Pace before the next element; the final element needs no pause.
		if i < len(fileIDs)-1 && c.opts.Delay > 0 {
			if err := c.sleepFunc(ctx, c.opts.Delay); err != nil {
				c.logger.Warn("batch canceled during pacing delay",
					slog.Int("unprocessed", len(fileIDs)-i-1),
				)

				break
			}
		}
	}

	summary.Unprocessed = summary.Total - summary.Successful - summary.Failed

	c.logger.Info("batch finished",
		slog.Int("successful", summary.Successful),
		slog.Int("failed", summary.Failed),
		slog.Int("unprocessed", summary.Unprocessed),
	)

	return summary
}

// transferOne runs the protocol for a single file and folds the result into
// a TransferOutcome.
func (c *Coordinator) transferOne(ctx context.Context, fileID, targetEmail string) TransferOutcome {
	result, err := Transfer(ctx, c.svc, fileID, targetEmail, Options{Notify: c.opts.Notify}, c.logger)
	if err != nil {
		c.logger.Error("transfer failed",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)

		return TransferOutcome{FileID: fileID, Err: err}
	}

	return TransferOutcome{
		FileID:   fileID,
		FileName: result.FileName,
		Success:  true,
		Message:  result.Message,
		NewOwner: result.NewOwner,
	}
}

// sleepCtx waits for the given duration or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
