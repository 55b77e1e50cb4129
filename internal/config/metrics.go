package config

import (
	"fmt"
	"strconv"
	"strings"
)

// MetricsConfig controls the Prometheus listener and optional OTLP push.
type MetricsConfig struct {
	Enabled     bool
	Port        string
	ServiceName string
	// OtlpEndpoint is host:port; a scheme in the raw value is stripped and
	// decides OtlpInsecure.
	OtlpEndpoint string
	OtlpInsecure bool
}

func loadMetrics() MetricsConfig {
	endpoint, insecure := splitOTLPEndpoint(envOrDefault(envOtelEndpoint, ""), boolEnvOrDefault(envOtelInsecure, true))
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, true),
		Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
		ServiceName:  envOrDefault(envOtelService, defaultServiceName),
		OtlpEndpoint: endpoint,
		OtlpInsecure: insecure,
	}
}

func splitOTLPEndpoint(raw string, insecure bool) (string, bool) {
	raw = strings.TrimSuffix(raw, "/")
	switch {
	case strings.HasPrefix(raw, "https://"):
		return strings.TrimPrefix(raw, "https://"), false
	case strings.HasPrefix(raw, "http://"):
		return strings.TrimPrefix(raw, "http://"), true
	}
	return raw, insecure
}

func (m MetricsConfig) validate(httpPort string) error {
	if !m.Enabled {
		return nil
	}
	if n, err := strconv.Atoi(m.Port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", envMetricsPort, m.Port)
	}
	if m.Port == httpPort && m.Port != "0" {
		return fmt.Errorf("%s and %s must differ, both are %s", envMetricsPort, envPort, m.Port)
	}
	return nil
}
