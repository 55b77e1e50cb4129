package config

import "time"

// TrackingConfig tunes pollers and the coordinator.
type TrackingConfig struct {
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	DrainTimeout    time.Duration // per-poller wait for pending announcements after a final
	ShutdownDrain   time.Duration // zero abandons live pollers immediately on shutdown
	MaxFailures     int
	FailureNoticeAt int
	StartWindow     time.Duration
	SendTimeout     time.Duration
}

func loadTracking() TrackingConfig {
	return TrackingConfig{
		PollInterval:    durationEnvOrDefault(envPollInterval, defaultPollInterval),
		FetchTimeout:    durationEnvOrDefault(envFetchTimeout, defaultFetchTimeout),
		DrainTimeout:    durationEnvOrDefault(envDrainTimeout, defaultDrainTimeout),
		ShutdownDrain:   durationEnvOrDefault(envShutdownDrain, 0),
		MaxFailures:     intEnvOrDefault(envMaxFailures, defaultMaxFailures),
		FailureNoticeAt: intEnvOrDefault(envFailureNotice, defaultFailureNotice),
		StartWindow:     durationEnvOrDefault(envStartWindow, defaultStartWindow),
		SendTimeout:     durationEnvOrDefault(envSendTimeout, defaultSendTimeout),
	}
}
