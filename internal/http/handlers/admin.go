package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/http/requestutil"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

// Controller is the write side of the coordinator.
type Controller interface {
	AddGame(ctx context.Context, game games.ActiveGame, announceStart bool) error
	StopGame(ctx context.Context, channelID string) (string, error)
	ResumeAll(ctx context.Context) (int, error)
	ReloadChannel(channelID string) bool
}

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	ctl    Controller
	token  string
	logger *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(ctl Controller, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		ctl:    ctl,
		token:  token,
		logger: logger,
	}
}

// TrackRequest is the /admin/track body.
type TrackRequest struct {
	GameID    string `json:"gameId"`
	ChannelID string `json:"channelId"`
	Locale    string `json:"locale"`
}

// StopRequest is the /admin/stop and /admin/reload body.
type StopRequest struct {
	ChannelID string `json:"channelId"`
}

const maxAdminBody = 4 << 10

// Track starts following a game on a channel.
func (h *AdminHandler) Track(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	logger := loggerFromContext(r, h.logger)

	var req TrackRequest
	if err := decodeBody(w, r, &req, maxAdminBody); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid body", logger)
		return
	}
	game := games.NewActiveGame(req.GameID, req.ChannelID, req.Locale)
	if err := h.ctl.AddGame(r.Context(), game, true); err != nil {
		h.writeControlError(w, r, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, game, logger)
	logging.Info(logger, "admin track",
		slog.String(logging.FieldGameID, game.GameID),
		slog.String(logging.FieldChannelID, game.ChannelID),
	)
}

// Stop ends tracking on a channel.
func (h *AdminHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	logger := loggerFromContext(r, h.logger)

	var req StopRequest
	if err := decodeBody(w, r, &req, maxAdminBody); err != nil || req.ChannelID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid body", logger)
		return
	}
	gameID, err := h.ctl.StopGame(r.Context(), req.ChannelID)
	if err != nil {
		h.writeControlError(w, r, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"channelId": req.ChannelID, "gameId": gameID}, logger)
	logging.Info(logger, "admin stop",
		slog.String(logging.FieldGameID, gameID),
		slog.String(logging.FieldChannelID, req.ChannelID),
	)
}

// Reload drops cached settings for a channel.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	logger := loggerFromContext(r, h.logger)

	var req StopRequest
	if err := decodeBody(w, r, &req, maxAdminBody); err != nil || req.ChannelID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid body", logger)
		return
	}
	reloaded := h.ctl.ReloadChannel(req.ChannelID)

	writeJSON(w, http.StatusOK, map[string]any{"channelId": req.ChannelID, "reloaded": reloaded}, logger)
	logging.Info(logger, "admin reload",
		slog.String(logging.FieldChannelID, req.ChannelID),
		slog.Bool("reloaded", reloaded),
	)
}

func (h *AdminHandler) writeControlError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error(), logger)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error(), logger)
	case errors.Is(err, domain.ErrShuttingDown):
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", logger)
	default:
		logging.Warn(logger, "admin request failed", slog.String(logging.FieldPath, r.URL.Path), slog.Any("err", err))
		writeError(w, r, http.StatusBadGateway, "request failed", logger)
	}
}

// guard enforces POST and the bearer token.
func (h *AdminHandler) guard(w http.ResponseWriter, r *http.Request) bool {
	if !requireMethod(w, r, http.MethodPost, h.logger) {
		return false
	}
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return false
	}
	return true
}

// Resume restarts polling for registered games whose poller failed or is
// missing. Guarded by ADMIN_TOKEN; returns 401 if missing/invalid.
func (h *AdminHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}

	logger := loggerFromContext(r, h.logger)
	n, err := h.ctl.ResumeAll(r.Context())
	if errors.Is(err, domain.ErrShuttingDown) {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", logger)
		return
	}
	if err != nil {
		logging.Warn(logger, "admin resume failed", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, "resume failed", logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"resumed": n, "status": "ok"}, logger)
	logging.Info(logger, "admin resume", slog.Int(logging.FieldCount, n))
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	return r.Header.Get("Authorization") == "Bearer "+h.token
}
