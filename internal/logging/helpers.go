package logging

import "log/slog"

// Debug logs a debug message when a logger is configured.
func Debug(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message when a logger is configured.
func Info(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning when a logger is configured.
func Warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error when a logger is configured.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		return
	}
	if err != nil {
		args = append(args, "error", err)
	}
	logger.Error(msg, args...)
}

// ForGame scopes a logger to one tracked game. A nil logger stays nil.
func ForGame(logger *slog.Logger, gameID, channelID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String(FieldGameID, gameID), slog.String(FieldChannelID, channelID))
}
