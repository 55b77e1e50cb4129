package config

// RegistryConfig selects and configures the active-game registry backend.
type RegistryConfig struct {
	Backend       string // sqlite, redis or memory
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

func loadRegistry() RegistryConfig {
	return RegistryConfig{
		Backend:       envOrDefault(envRegistryBackend, defaultRegistryBackend),
		Path:          envOrDefault(envRegistryPath, defaultRegistryPath),
		RedisAddr:     envOrDefault(envRedisAddr, defaultRedisAddr),
		RedisPassword: envOrDefault(envRedisPassword, ""),
		RedisDB:       intEnvOrDefault(envRedisDB, 0),
		RedisKey:      envOrDefault(envRedisKey, defaultRedisKey),
	}
}
