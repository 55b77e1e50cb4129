package handlers

import (
	"context"
	"log/slog"
	nethttp "net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/coordinator"
)

// Tracker is the read side of the coordinator served over HTTP.
type Tracker interface {
	Games(ctx context.Context) ([]coordinator.GameView, error)
	CurrentGame(ctx context.Context, channelID string) (string, bool, error)
	Draining() bool
}

// Handler serves health, readiness and the active game listing.
type Handler struct {
	tracker Tracker
	logger  *slog.Logger
	readyFn func() bool
}

// NewHandler constructs a Handler. readyFn reports whether startup resume has
// completed; nil means always ready.
func NewHandler(tracker Tracker, logger *slog.Logger, readyFn func() bool) *Handler {
	return &Handler{
		tracker: tracker,
		logger:  logger,
		readyFn: readyFn,
	}
}

func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch {
	case r.URL.Path == "/health":
		h.Health(w, r)
	case r.URL.Path == "/ready":
		h.Ready(w, r)
	case r.URL.Path == "/games":
		h.Games(w, r)
	case strings.HasPrefix(r.URL.Path, "/channels/"):
		h.ChannelGame(w, r)
	default:
		writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic. It fails before resume finishes and
// once draining has begun.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if h.tracker != nil && h.tracker.Draining() {
		writeError(w, r, nethttp.StatusServiceUnavailable, "draining", h.logger)
		return
	}
	if h.readyFn != nil && !h.readyFn() {
		writeError(w, r, nethttp.StatusServiceUnavailable, "not ready", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
}

// ChannelView is one channel watching a game.
type ChannelView struct {
	ChannelID           string `json:"channelId"`
	Locale              string `json:"locale"`
	State               string `json:"state"`
	Cursor              int    `json:"cursor"`
	ConsecutiveFailures int    `json:"consecutiveFailures,omitempty"`
	LastError           string `json:"lastError,omitempty"`
}

// GameGroup lists the channels watching one game.
type GameGroup struct {
	GameID   string        `json:"gameId"`
	Channels []ChannelView `json:"channels"`
}

// GamesResponse is the /games payload.
type GamesResponse struct {
	Count int         `json:"count"`
	Games []GameGroup `json:"games"`
}

// Games lists active games grouped by game ID.
func (h *Handler) Games(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	views, err := h.tracker.Games(r.Context())
	if err != nil {
		if logger != nil {
			logger.Error("list games failed", "error", err)
		}
		writeError(w, r, nethttp.StatusInternalServerError, "registry unavailable", logger)
		return
	}

	groups := groupByGame(views)
	if logger != nil {
		logger.Info("served active games", "games", len(groups), "channels", len(views))
	}
	writeJSON(w, nethttp.StatusOK, GamesResponse{Count: len(views), Games: groups}, logger)
}

func groupByGame(views []coordinator.GameView) []GameGroup {
	index := make(map[string]int)
	groups := make([]GameGroup, 0)
	for _, v := range views {
		i, ok := index[v.GameID]
		if !ok {
			i = len(groups)
			index[v.GameID] = i
			groups = append(groups, GameGroup{GameID: v.GameID})
		}
		groups[i].Channels = append(groups[i].Channels, ChannelView{
			ChannelID:           v.ChannelID,
			Locale:              v.Locale,
			State:               v.State,
			Cursor:              v.Cursor,
			ConsecutiveFailures: v.ConsecutiveFailures,
			LastError:           v.LastError,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GameID < groups[j].GameID })
	return groups
}

// ChannelGame returns the game tracked on /channels/{id}.
func (h *Handler) ChannelGame(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/channels/")
	id, err := url.PathUnescape(raw)
	if err != nil || id == "" || strings.ContainsAny(id, " \t/") {
		writeError(w, r, nethttp.StatusBadRequest, "invalid channel id", h.logger)
		return
	}

	gameID, ok, err := h.tracker.CurrentGame(r.Context(), id)
	if err != nil {
		writeError(w, r, nethttp.StatusInternalServerError, "registry unavailable", h.logger)
		return
	}
	if !ok {
		writeError(w, r, nethttp.StatusNotFound, "no active game for channel", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"channelId": id, "gameId": gameID}, h.logger)
}
