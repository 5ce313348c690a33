package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`

	QCProxyURL string `mapstructure:"QC_PROXY_URL"`
	QCAPIURL   string `mapstructure:"QC_API_URL"`
	QCAPIToken string `mapstructure:"QC_API_TOKEN"`
	QCCacheTTL int    `mapstructure:"QC_CACHE_TTL"` // in seconds

	AgentAffCode string `mapstructure:"AGENT_AFF_CODE"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `mapstructure:"TELEGRAM_CHAT_ID"`

	ResolveTimeout int     `mapstructure:"RESOLVE_TIMEOUT"` // in seconds
	ScrapeTimeout  int     `mapstructure:"SCRAPE_TIMEOUT"`  // in seconds
	ScrapeWorkers  int     `mapstructure:"SCRAPE_WORKERS"`
	CNYUSDRate     float64 `mapstructure:"CNY_USD_RATE"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables in
	// production.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("QC_API_URL", "https://open.kakobuy.com/open/pic/qcImage")
	viper.SetDefault("QC_CACHE_TTL", 900)
	viper.SetDefault("AGENT_AFF_CODE", "latam")
	viper.SetDefault("RESOLVE_TIMEOUT", 10)
	viper.SetDefault("SCRAPE_TIMEOUT", 45)
	viper.SetDefault("SCRAPE_WORKERS", 4)
	viper.SetDefault("CNY_USD_RATE", 0.15)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
