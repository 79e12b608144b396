package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	MetricsAddr string

	BaseURL          string
	GeoID            string
	RequestDelay     time.Duration
	BootstrapMode    string // "browser" or "none"
	BootstrapURL     string
	BootstrapTimeout time.Duration

	RunTZ     string
	TablesDir string

	RedisAddr string
	RedisPass string
	RedisDB   int
	CacheTTL  time.Duration

	MySQLDSN string // empty disables the statistics mirror

	TelegramAPIBase string
	TelegramToken   string
	TelegramChatID  string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		MetricsAddr: env("METRICS_ADDR", ""),

		BaseURL:          env("TVIL_BASE_URL", "https://tvil.ru"),
		GeoID:            env("TVIL_GEO_ID", "251"),
		RequestDelay:     time.Duration(atoi("REQUEST_DELAY_MS", 500)) * time.Millisecond,
		BootstrapMode:    env("BOOTSTRAP_MODE", "browser"),
		BootstrapURL:     env("BOOTSTRAP_URL", "https://tvil.ru/city/irkutskaya-oblast/?gp%5Bentity_type%5D%5B0%5D=1"),
		BootstrapTimeout: time.Duration(atoi("BOOTSTRAP_TIMEOUT_SECONDS", 30)) * time.Second,

		RunTZ:     env("RUN_TZ", "Asia/Irkutsk"),
		TablesDir: env("TABLES_DIR", "tables"),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 43200)) * time.Second,

		MySQLDSN: env("MYSQL_DSN", ""),

		TelegramAPIBase: env("TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramToken:   env("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:  env("TELEGRAM_CHAT_ID", ""),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
