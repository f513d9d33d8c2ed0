// Package handler exposes the check and configuration endpoints.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"numcheck/internal/filter"
	"numcheck/internal/platform/metrics"
	"numcheck/internal/platform/middleware"
	"numcheck/internal/report"
	"numcheck/internal/run"
	"numcheck/internal/transport/http/shared"
	dErrors "numcheck/pkg/domain-errors"
)

// maxUploadBytes bounds the multipart memory footprint of file checks.
const maxUploadBytes = 8 << 20

// Service defines the run operations the handler delegates to.
type Service interface {
	GetConfig(ctx context.Context, callerID string) (filter.OperationConfig, error)
	Configure(ctx context.Context, callerID string, cfg filter.OperationConfig) error
	ResetConfig(ctx context.Context, callerID string) error
	CheckText(ctx context.Context, callerID, text string) (*run.Result, error)
	CheckFile(ctx context.Context, callerID, filename string, r io.Reader) (*run.Result, error)
}

// Handler handles check run and configuration endpoints.
type Handler struct {
	logger    *slog.Logger
	runs      Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator

	// runTimeout bounds a whole check run at the transport level. Large
	// batches with paced chunks take minutes, so this is deliberately long.
	runTimeout time.Duration
}

// New creates a new run Handler.
func New(runs Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:     logger,
		runs:       runs,
		metrics:    m,
		validator:  validator,
		runTimeout: 15 * time.Minute,
	}
}

// Register registers the run routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Recovery(h.logger))
		g.Use(middleware.RequestID)
		g.Use(middleware.Logger(h.logger))
		g.Use(middleware.Latency(h.metrics))
		g.Use(middleware.RequireAuth(h.validator, h.logger))

		g.Group(func(cfg chi.Router) {
			cfg.Use(middleware.Timeout(30 * time.Second))
			cfg.Get("/v1/config", h.handleGetConfig)
			cfg.Put("/v1/config", h.handlePutConfig)
			cfg.Post("/v1/config/reset", h.handleResetConfig)
		})

		g.Group(func(chk chi.Router) {
			chk.Use(middleware.Timeout(h.runTimeout))
			chk.Post("/v1/check/text", h.handleCheckText)
			chk.Post("/v1/check/file", h.handleCheckFile)
		})
	})
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)
	if callerID == "" {
		h.authContextError(w, ctx)
		return
	}

	cfg, err := h.runs.GetConfig(ctx, callerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load config",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, configToResponse(cfg))
}

func (h *Handler) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)
	if callerID == "" {
		h.authContextError(w, ctx)
		return
	}

	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid config request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	cfg, err := req.toConfig()
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.runs.Configure(ctx, callerID, cfg); err != nil {
		if dErrors.Is(err, dErrors.CodeInvalidInput) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to store config",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to store configuration"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, configToResponse(cfg))
}

func (h *Handler) handleResetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)
	if callerID == "" {
		h.authContextError(w, ctx)
		return
	}

	if err := h.runs.ResetConfig(ctx, callerID); err != nil {
		h.logger.ErrorContext(ctx, "failed to reset config",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, configToResponse(filter.DefaultConfig()))
}

func (h *Handler) handleCheckText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)
	if callerID == "" {
		h.authContextError(w, ctx)
		return
	}

	var req checkTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.runs.CheckText(ctx, callerID, req.Text)
	if err != nil {
		h.writeRunError(w, ctx, err)
		return
	}
	h.writeRunResult(w, r, res)
}

func (h *Handler) handleCheckFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)
	if callerID == "" {
		h.authContextError(w, ctx)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart request"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing file field"))
		return
	}
	defer file.Close()

	res, err := h.runs.CheckFile(ctx, callerID, header.Filename, file)
	if err != nil {
		h.writeRunError(w, ctx, err)
		return
	}
	h.writeRunResult(w, r, res)
}

// writeRunResult renders the run result as JSON, or as a TXT/CSV/XLSX
// attachment when the format query parameter asks for one.
func (h *Handler) writeRunResult(w http.ResponseWriter, r *http.Request, res *run.Result) {
	switch r.URL.Query().Get("format") {
	case "txt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(res.FinishedAt, "txt")+`"`)
		if _, err := w.Write([]byte(report.Text(res))); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to stream txt export", "error", err.Error())
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(res.FinishedAt, "csv")+`"`)
		if err := report.CSV(w, res); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to stream csv export", "error", err.Error())
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(res.FinishedAt, "xlsx")+`"`)
		if err := report.XLSX(w, res); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to stream xlsx export", "error", err.Error())
		}
	default:
		shared.WriteJSON(w, http.StatusOK, resultToResponse(res))
	}
}

func (h *Handler) writeRunError(w http.ResponseWriter, ctx context.Context, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "check run failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "check run failed"))
		return
	}
	h.logger.WarnContext(ctx, "check run rejected",
		"request_id", middleware.GetRequestID(ctx),
		"code", string(code),
		"error", err.Error(),
	)
	shared.WriteError(w, err)
}

func (h *Handler) authContextError(w http.ResponseWriter, ctx context.Context) {
	// This should never happen if RequireAuth middleware is configured correctly.
	h.logger.ErrorContext(ctx, "caller ID missing from context despite auth middleware",
		"request_id", middleware.GetRequestID(ctx),
	)
	shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
}
