package statsapi

import "time"

const (
	providerName       = "statsapi"
	defaultBaseURL     = "https://statsapi.mlb.com"
	defaultHTTPTimeout = 10 * time.Second
	defaultLocale      = "en"
	feedPath           = "/api/v1.1/game/%s/feed/live"
	maxErrorBody       = 512
)
