package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/comanda-pos/comanda/internal/stock"
)

// LowStockSource is the slice of the stock repository the scan needs.
type LowStockSource interface {
	ListBelowMinimum(ctx context.Context) ([]stock.Item, error)
}

// LowStockScanJob reports stock items that fell below their minimum level.
type LowStockScanJob struct {
	Stock  LowStockSource
	Logger *slog.Logger
}

// NewLowStockScanJob initialises the low stock scan handler.
func NewLowStockScanJob(source LowStockSource, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{Stock: source, Logger: logger}
}

// Handle executes the low stock scan.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Stock == nil {
		return errors.New("low stock scan: handler not configured")
	}

	logger := j.logger()
	logger.Info("starting low stock scan")

	items, err := j.Stock.ListBelowMinimum(ctx)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	for _, item := range items {
		minStock := ""
		if item.MinStock != nil {
			minStock = item.MinStock.String()
		}
		logger.Warn("stock below minimum",
			slog.String("stock_id", item.ID),
			slog.String("owner_id", item.OwnerID),
			slog.String("name", item.Name),
			slog.String("quantity", item.Quantity.String()),
			slog.String("min_stock", minStock),
		)
	}

	logger.Info("completed low stock scan", slog.Int("below_minimum", len(items)))
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStockLowScan))
	}
	return slog.Default().With(slog.String("job", TaskStockLowScan))
}
