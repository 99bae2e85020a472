package jobs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	overdue  int
	lowStock int
}

func (f *fakeEnqueuer) EnqueueOverdueScan(context.Context, OverdueScanPayload) (*asynq.TaskInfo, error) {
	f.overdue++
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func (f *fakeEnqueuer) EnqueueLowStockScan(context.Context) (*asynq.TaskInfo, error) {
	f.lowStock++
	return &asynq.TaskInfo{ID: "task-2", Queue: QueueDefault}, nil
}

func newJobsRouter(enqueuer Enqueuer) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(nil, enqueuer, logger).MountRoutes(r)
	return r
}

func TestTriggerOverdueScanEnqueuesTask(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := newJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/overdue-scan", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, enqueuer.overdue)
	require.JSONEq(t, `{"queue":"`+QueueDefault+`","task":"task-1"}`, rec.Body.String())
}

func TestTriggerLowStockScanEnqueuesTask(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := newJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/low-stock-scan", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, enqueuer.lowStock)
}

func TestTriggerWithoutEnqueuerUnavailable(t *testing.T) {
	router := newJobsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/overdue-scan", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
