package bills

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// Handler wires HTTP endpoints for the bills module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs bills handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers bill routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Patch("/{id}/pay", h.handlePay)
	r.Patch("/{id}/cancel", h.handleCancel)
	r.Delete("/{id}", h.handleDelete)
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
	bill, err := h.service.Create(r.Context(), req, shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}
	out, err := h.service.List(r.Context(), shared.ProfileIDFromContext(r.Context()), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	bill, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req, shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.Pay(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("pay bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
