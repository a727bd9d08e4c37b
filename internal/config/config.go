package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

type Config struct {
	Env      string `env:"TASKBOARD_ENV" env-default:"local"`
	Verbose  bool   `env:"TASKBOARD_VERBOSE" env-default:"false"`
	Database DatabaseConfig
	HTTP     HTTPConfig
}

type DatabaseConfig struct {
	Path string `env:"TASKBOARD_DB_PATH" env-default:"tasks.db"`
}

type HTTPConfig struct {
	Host            string        `env:"TASKBOARD_HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"TASKBOARD_HTTP_PORT" env-default:"5000"`
	ShutdownTimeout time.Duration `env:"TASKBOARD_HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}
