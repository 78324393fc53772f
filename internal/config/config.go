package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type BackendConfig struct {
	// BaseURL is prefixed onto every relative API path.
	BaseURL string
	// TunnelHosts lists hostname markers whose interstitial page needs a
	// bypass header on every request (e.g. localtunnel domains).
	TunnelHosts []string
}

type RedisConfig struct {
	// Enabled switches the session store and sentiment cache to redis.
	// When false the gateway runs file-backed with no cache.
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	// StoragePath is the directory holding the persisted auth slot when
	// redis is disabled.
	StoragePath string
}

type ChatConfig struct {
	PollInterval time.Duration
}

type SentimentConfig struct {
	APIKey   string
	Endpoint string
	CacheTTL time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Backend          BackendConfig
	Redis            RedisConfig
	Session          SessionConfig
	Chat             ChatConfig
	Sentiment        SentimentConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("ZEROBIN")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("backend.baseurl", "http://localhost:8000/api/v1")
	v.SetDefault("backend.tunnelhosts", "loca.lt")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.storagepath", ".zerobin")

	v.SetDefault("chat.pollinterval", "5s")

	v.SetDefault("sentiment.endpoint", "https://api.sentim-api.herokuapp.com/api/v1/")
	v.SetDefault("sentiment.cachettl", "1h")
}
