package config

import "time"

const (
	envFile              = "ENV_FILE"
	envPort              = "PORT"
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"
	envMetricsPort       = "METRICS_PORT"
	envMetricsOn         = "METRICS_ENABLED"
	envOtelEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService       = "OTEL_SERVICE_NAME"
	envOtelInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	envPollInterval      = "POLL_INTERVAL"
	envFetchTimeout      = "FETCH_TIMEOUT"
	envDrainTimeout      = "DRAIN_TIMEOUT"
	envShutdownDrain     = "SHUTDOWN_DRAIN_TIMEOUT"
	envMaxFailures       = "MAX_CONSECUTIVE_FAILURES"
	envFailureNotice     = "FAILURE_NOTICE_AFTER"
	envStartWindow       = "START_WINDOW"
	envSendTimeout       = "SEND_TIMEOUT"
	envProvider          = "PROVIDER"
	envStatsAPIBaseURL   = "STATSAPI_BASE_URL"
	envFixturePath       = "FIXTURE_PATH"
	envFeedRate          = "FEED_RATE_PER_SECOND"
	envFeedBurst         = "FEED_RATE_BURST"
	envBreakerFailures   = "FEED_BREAKER_FAILURES"
	envBreakerOpen       = "FEED_BREAKER_OPEN"
	envRegistryBackend   = "REGISTRY_BACKEND"
	envRegistryPath      = "REGISTRY_PATH"
	envRedisAddr         = "REDIS_ADDR"
	envRedisPassword     = "REDIS_PASSWORD"
	envRedisDB           = "REDIS_DB"
	envRedisKey          = "REDIS_KEY"
	envChannelSource     = "CHANNEL_CONFIG_SOURCE"
	envChannelFile       = "CHANNEL_CONFIG_FILE"
	envPostgresDSN       = "POSTGRES_DSN"
	envChannelCacheTTL   = "CHANNEL_CONFIG_TTL"
	envDispatcher        = "DISPATCHER"
	envTelegramToken     = "TELEGRAM_BOT_TOKEN"
	envTelegramMinPeriod = "TELEGRAM_MIN_INTERVAL"
	envAdminToken        = "ADMIN_TOKEN"

	defaultEnvFile   = ".env"
	defaultPort      = "4000"
	defaultLogLevel  = "info"
	defaultLogFormat = "text"

	defaultMetricsPort = "9090"
	defaultServiceName = "mlb-gamefeed-service"

	// Upstream publishes plays at roughly this cadence.
	defaultPollInterval  = 10 * time.Second
	defaultFetchTimeout  = 10 * time.Second
	defaultDrainTimeout  = 60 * time.Second
	defaultMaxFailures   = 10
	defaultFailureNotice = 5
	defaultStartWindow   = 30 * time.Minute
	defaultSendTimeout   = 10 * time.Second

	defaultProvider        = "statsapi"
	defaultStatsAPIBaseURL = "https://statsapi.mlb.com"
	defaultFixturePath     = "fixtures/feeds.json"
	defaultFeedRate        = 5
	defaultFeedBurst       = 5
	defaultBreakerFailures = 5
	defaultBreakerOpen     = 30 * time.Second

	defaultRegistryBackend = "sqlite"
	defaultRegistryPath    = "data/games.db"
	defaultRedisAddr       = "localhost:6379"
	defaultRedisKey        = "gamefeed:active_games"

	defaultChannelSource   = "defaults"
	defaultChannelFile     = "channels.yaml"
	defaultChannelCacheTTL = 5 * time.Minute

	defaultDispatcher        = "log"
	defaultTelegramMinPeriod = 1 * time.Second
)
