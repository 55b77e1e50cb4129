package server

import "time"

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	// Long enough for an admin track call that fetches the feed once.
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

// shutdownTimeout bounds listener shutdown after pollers have drained.
var shutdownTimeout = 10 * time.Second
