package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/camaras-ia/licencias-cli/internal/dashboard"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			zap.L().Warn("api: health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) overview(w http.ResponseWriter, r *http.Request) {
	p, err := parseOverviewParams(r.URL.Query(), h.loc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.Overview(r.Context(), actorFrom(r.Context()), p)
	h.respond(w, r, out, err)
}

func (h *handler) usage(w http.ResponseWriter, r *http.Request) {
	p, err := parseUsageParams(r.URL.Query(), h.loc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.Usage(r.Context(), actorFrom(r.Context()), p)
	h.respond(w, r, out, err)
}

func (h *handler) business(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Business(r.Context(), actorFrom(r.Context()))
	h.respond(w, r, out, err)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r.URL.Query(), h.loc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.Dashboard(r.Context(), actorFrom(r.Context()), p)
	h.respond(w, r, out, err)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Refresh(r.Context(), actorFrom(r.Context()))
	h.respond(w, r, info, err)
}

func (h *handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// fail maps service and validation errors to HTTP statuses.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		zap.L().Error("api: request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
