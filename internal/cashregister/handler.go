package cashregister

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// Handler wires HTTP endpoints for the cash register module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs cash register handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers cash register routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleOpen)
	r.Get("/", h.handleList)
	r.Get("/current", h.handleCurrent)
	r.Post("/transactions", h.handleCreateTransaction)
	r.Get("/{id}", h.handleGet)
	r.Get("/{id}/transactions", h.handleTransactions)
	r.Patch("/{id}/payments", h.handleRegisterPayments)
	r.Patch("/{id}/close", h.handleClose)
	r.Get("/{id}/report", h.handleReport)
	r.Get("/{id}/sales", h.handleSales)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	register, err := h.service.Open(r.Context(), req, shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("open cash register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, register)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context(), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	register, err := h.service.Current(r.Context(), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, register)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	register, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, register)
}

func (h *Handler) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	transaction, err := h.service.CreateTransaction(r.Context(), req, shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create register transaction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, transaction)
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Transactions(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleRegisterPayments(w http.ResponseWriter, r *http.Request) {
	var req RegisterPaymentsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	register, err := h.service.RegisterPayments(r.Context(), chi.URLParam(r, "id"), req, shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("register counted payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, register)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	register, err := h.service.Close(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("close cash register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, register)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Sales(r.Context(), chi.URLParam(r, "id"), shared.ProfileIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
