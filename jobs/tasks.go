package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReissueScan is the task type for the due-for-reissue warmup.
	TaskReissueScan = "ledger:reissue_scan"
)

// ReissueScanPayload configures one due-for-reissue scan.
type ReissueScanPayload struct {
	ThresholdDays int `json:"threshold_days"`
}

// NewReissueScanTask constructs an Asynq task.
func NewReissueScanTask(payload ReissueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReissueScan, data), nil
}
