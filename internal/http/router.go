package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux. Admin routes are mounted only
// when admin is non-nil.
func NewRouter(handler *handlers.Handler, admin *handlers.AdminHandler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/games", handler.Games)
	mux.HandleFunc("/channels/", handler.ChannelGame)
	if admin != nil {
		mux.HandleFunc("/admin/resume", admin.Resume)
		mux.HandleFunc("/admin/track", admin.Track)
		mux.HandleFunc("/admin/stop", admin.Stop)
		mux.HandleFunc("/admin/reload", admin.Reload)
	}
	return mux
}
