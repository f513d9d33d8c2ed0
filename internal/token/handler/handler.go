// Package handler exposes the token exchange endpoint.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"numcheck/internal/platform/middleware"
	"numcheck/internal/token"
	"numcheck/internal/transport/http/shared"
	dErrors "numcheck/pkg/domain-errors"
)

// Handler handles the API key to access token exchange.
type Handler struct {
	logger    *slog.Logger
	exchanger *token.Exchanger
}

func New(exchanger *token.Exchanger, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, exchanger: exchanger}
}

// Register registers the token routes with the chi router. The exchange
// endpoint is the only unauthenticated route besides health and metrics.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Recovery(h.logger))
		g.Use(middleware.RequestID)
		g.Use(middleware.Logger(h.logger))
		g.Use(middleware.Timeout(10 * time.Second))
		g.Post("/auth/token", h.handleExchange)
	})
}

type exchangeRequest struct {
	CallerID string `json:"caller_id"`
	APIKey   string `json:"api_key"`
}

type exchangeResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Handler) handleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.CallerID == "" || req.APIKey == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "caller_id and api_key are required"))
		return
	}

	signed, expiresAt, err := h.exchanger.Exchange(req.CallerID, req.APIKey)
	if err != nil {
		h.logger.WarnContext(ctx, "token exchange rejected",
			"request_id", middleware.GetRequestID(ctx),
			"caller_id", req.CallerID,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, exchangeResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
