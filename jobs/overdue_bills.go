package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/comanda-pos/comanda/internal/bills"
)

// OverdueBillSource is the slice of the bill repository the scan needs.
type OverdueBillSource interface {
	ListOverdue(ctx context.Context, asOf time.Time) ([]bills.Bill, error)
}

// OverdueBillScanJob reports pending bills whose due date has passed.
type OverdueBillScanJob struct {
	Bills  OverdueBillSource
	Logger *slog.Logger
	clock  func() time.Time
}

// NewOverdueBillScanJob initialises the overdue bill scan handler.
func NewOverdueBillScanJob(source OverdueBillSource, logger *slog.Logger) *OverdueBillScanJob {
	return &OverdueBillScanJob{
		Bills:  source,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue bill scan.
func (j *OverdueBillScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Bills == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}

	logger := j.logger().With(slog.Time("as_of", asOf))
	logger.Info("starting overdue bill scan")

	overdue, err := j.Bills.ListOverdue(ctx, asOf)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	for _, bill := range overdue {
		logger.Warn("bill overdue",
			slog.String("bill_id", bill.ID),
			slog.String("owner_id", bill.OwnerID),
			slog.String("name", bill.Name),
			slog.String("amount", bill.Amount.String()),
			slog.Time("due_date", bill.DueDate),
		)
	}

	logger.Info("completed overdue bill scan", slog.Int("overdue", len(overdue)))
	return nil
}

func (j *OverdueBillScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBillsOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskBillsOverdueScan))
}

func (j *OverdueBillScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
