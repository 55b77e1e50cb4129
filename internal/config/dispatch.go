package config

import "time"

// DispatchConfig selects the announcement sink.
type DispatchConfig struct {
	Kind              string // log or telegram
	TelegramToken     string
	TelegramMinPeriod time.Duration
}

func loadDispatch() DispatchConfig {
	return DispatchConfig{
		Kind:              envOrDefault(envDispatcher, defaultDispatcher),
		TelegramToken:     envOrDefault(envTelegramToken, ""),
		TelegramMinPeriod: durationEnvOrDefault(envTelegramMinPeriod, defaultTelegramMinPeriod),
	}
}
