package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver               string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or sqlite
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBHost                 string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	SQLitePath             string `env:"SQLITE_PATH" envDefault:"bazaar.db"`

	// BotToken is the secret shared with the host application; it keys payload signatures.
	BotToken   string        `env:"BOT_TOKEN"`
	AuthMaxAge time.Duration `env:"AUTH_MAX_AGE" envDefault:"24h"`

	NotifyEnabled bool          `env:"NOTIFY_ENABLED" envDefault:"true"`
	NotifyAPIBase string        `env:"NOTIFY_API_BASE" envDefault:"https://api.telegram.org"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"3s"`

	AllowedOriginSuffixes []string `env:"ALLOWED_ORIGIN_SUFFIXES" envSeparator:"," envDefault:"vercel.app,web.telegram.org"`
	AdminExternalIDs      []int64  `env:"ADMIN_EXTERNAL_IDS" envSeparator:","`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
