package logging

import "log/slog"

// Structured log field keys shared across packages.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldProvider   = "provider"
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldGameID     = "game_id"
	FieldChannelID  = "channel_id"
	FieldLocale     = "locale"
	FieldState      = "state"
	FieldOutcome    = "outcome"
	FieldCursor     = "cursor"
	FieldPlayIndex  = "play_index"
	FieldClass      = "classification"
	FieldDelayMS    = "delay_ms"
	FieldAttempt    = "attempt"
	FieldHandle     = "handle"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
