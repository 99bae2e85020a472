package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// Handler wires HTTP endpoints for the payments module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs payments handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/orders/{orderID}/payments", h.handleCreate)
	r.Get("/orders/{orderID}/payments", h.handleListByOrder)
	r.Patch("/payments/{id}/cancel", h.handleCancel)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.Create(r.Context(), chi.URLParam(r, "orderID"), req, shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) handleListByOrder(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListByOrder(r.Context(), chi.URLParam(r, "orderID"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("cancel payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}
