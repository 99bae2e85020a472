package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// Handler wires HTTP endpoints for the reports module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.handleSales)
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.Sales(r.Context(), shared.ProfileIDFromContext(r.Context()), from, to)
	if err != nil {
		h.logger.Error("build sales report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// parsePeriod reads from/to query dates. The range defaults to the last 30
// days and is half-open: to itself is included as a full day.
func parsePeriod(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid from date", httpx.ErrValidation)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid to date", httpx.ErrValidation)
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must precede to", httpx.ErrValidation)
	}
	return from, to, nil
}
