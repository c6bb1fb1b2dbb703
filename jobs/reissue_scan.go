package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockroom/stockroom/internal/ledger"
)

// NewReissueScanHandler returns the handler that computes the due-for-reissue
// report and warms the Redis cache the report endpoint reads from.
func NewReissueScanHandler(calc *ledger.Calculator, cache *ledger.ReportCache, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReissueScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.ThresholdDays < 0 {
			payload.ThresholdDays = 0
		}

		due, err := calc.DueForReissue(ctx, time.Now().UTC(), payload.ThresholdDays)
		if err != nil {
			logger.Error("reissue scan", slog.Any("error", err))
			return err
		}
		if err := cache.Set(ctx, ledger.ReissueKey(payload.ThresholdDays), due); err != nil {
			logger.Error("reissue scan cache write", slog.Any("error", err))
			return err
		}
		logger.Info("reissue scan complete",
			slog.Int("threshold_days", payload.ThresholdDays),
			slog.Int("due_count", len(due)))
		return nil
	}
}
