// Package jobs holds the background task definitions and the Asynq worker
// that runs them.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBillsOverdueScan flags pending bills past their due date.
	TaskBillsOverdueScan = "bills:overdue_scan"
	// TaskStockLowScan flags stock items below their configured minimum.
	TaskStockLowScan = "stock:low_stock_scan"
)

// OverdueScanPayload parameterises the overdue bill scan. A zero AsOf means
// scan as of now.
type OverdueScanPayload struct {
	AsOf time.Time `json:"asOf,omitempty"`
}

// NewOverdueScanTask constructs the overdue bill scan task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillsOverdueScan, data), nil
}

// NewLowStockScanTask constructs the low stock scan task. It carries no
// parameters.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskStockLowScan, nil)
}
