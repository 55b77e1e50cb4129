package config

import "time"

// FeedConfig controls how live game feeds are fetched.
type FeedConfig struct {
	Provider        string // statsapi or fixture
	BaseURL         string
	FixturePath     string
	RatePerSecond   float64
	Burst           int
	BreakerFailures int
	BreakerOpen     time.Duration
}

func loadFeed() FeedConfig {
	return FeedConfig{
		Provider:        envOrDefault(envProvider, defaultProvider),
		BaseURL:         envOrDefault(envStatsAPIBaseURL, defaultStatsAPIBaseURL),
		FixturePath:     envOrDefault(envFixturePath, defaultFixturePath),
		RatePerSecond:   floatEnvOrDefault(envFeedRate, defaultFeedRate),
		Burst:           intEnvOrDefault(envFeedBurst, defaultFeedBurst),
		BreakerFailures: intEnvOrDefault(envBreakerFailures, defaultBreakerFailures),
		BreakerOpen:     durationEnvOrDefault(envBreakerOpen, defaultBreakerOpen),
	}
}
