package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// Handler wires HTTP endpoints for authentication.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
}

// NewHandler constructs auth handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions}
}

// MountRoutes registers auth routes. These are the only routes reachable
// without a session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	profile, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.logger.Error("register profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetProfile(profile.ID)
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	profile, err := h.service.Login(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetProfile(profile.ID)
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	httpx.NoContent(w)
}

// RequireAuth rejects requests whose session carries no profile.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.ProfileIDFromContext(r.Context()) == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
