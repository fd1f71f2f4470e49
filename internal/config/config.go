package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Overpass  OverpassConfig
	Nominatim NominatimConfig
	Search    SearchConfig
	Warmup    WarmupConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig - TTL по категориям кеша
type CacheConfig struct {
	SearchTTL    time.Duration
	NominatimTTL time.Duration
	AreaTTL      time.Duration
	DetailsTTL   time.Duration
}

// OverpassConfig - пул серверов Overpass и политика повторов
type OverpassConfig struct {
	Servers           []string
	MaxRetries        int
	RetryDelay        time.Duration
	BackoffMultiplier float64
	GlobalTimeout     time.Duration
}

type NominatimConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	Delay          time.Duration
	MaxRadiusKm    float64
}

// SearchConfig - пороги радиусов, разделяющие стратегии запросов,
// и параметры слияния результатов
type SearchConfig struct {
	MediumRadiusKm      float64
	SplitRadiusKm       float64
	VirtualRadiusKm     float64
	MaxOverpassRadiusKm float64
	DedupThresholdM     float64
	MaxResults          int
}

type WarmupConfig struct {
	Enabled bool
	Delay   time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env опционален: в контейнере конфигурация приходит из окружения
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			SearchTTL:    time.Duration(viper.GetInt("CACHE_SEARCH_TTL")) * time.Second,
			NominatimTTL: time.Duration(viper.GetInt("CACHE_NOMINATIM_TTL")) * time.Second,
			AreaTTL:      time.Duration(viper.GetInt("CACHE_AREA_TTL")) * time.Second,
			DetailsTTL:   time.Duration(viper.GetInt("CACHE_DETAILS_TTL")) * time.Second,
		},
		Overpass: OverpassConfig{
			Servers:           parseServerList(viper.GetString("OVERPASS_SERVERS")),
			MaxRetries:        viper.GetInt("OVERPASS_MAX_RETRIES"),
			RetryDelay:        time.Duration(viper.GetInt("OVERPASS_RETRY_DELAY_MS")) * time.Millisecond,
			BackoffMultiplier: viper.GetFloat64("OVERPASS_BACKOFF_MULTIPLIER"),
			GlobalTimeout:     time.Duration(viper.GetInt("OVERPASS_GLOBAL_TIMEOUT_MS")) * time.Millisecond,
		},
		Nominatim: NominatimConfig{
			BaseURL:        viper.GetString("NOMINATIM_BASE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("NOMINATIM_REQUEST_TIMEOUT_MS")) * time.Millisecond,
			Delay:          time.Duration(viper.GetInt("NOMINATIM_DELAY_MS")) * time.Millisecond,
			MaxRadiusKm:    viper.GetFloat64("NOMINATIM_MAX_RADIUS_KM"),
		},
		Search: SearchConfig{
			MediumRadiusKm:      viper.GetFloat64("SEARCH_MEDIUM_RADIUS_KM"),
			SplitRadiusKm:       viper.GetFloat64("SEARCH_SPLIT_RADIUS_KM"),
			VirtualRadiusKm:     viper.GetFloat64("SEARCH_VIRTUAL_RADIUS_KM"),
			MaxOverpassRadiusKm: viper.GetFloat64("SEARCH_MAX_OVERPASS_RADIUS_KM"),
			DedupThresholdM:     viper.GetFloat64("SEARCH_DEDUP_THRESHOLD_M"),
			MaxResults:          viper.GetInt("SEARCH_MAX_RESULTS"),
		},
		Warmup: WarmupConfig{
			Enabled: viper.GetBool("WARMUP_ENABLED"),
			Delay:   time.Duration(viper.GetInt("WARMUP_DELAY_MS")) * time.Millisecond,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults подставляет значения по умолчанию для незаданных параметров
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if len(cfg.Overpass.Servers) == 0 {
		cfg.Overpass.Servers = []string{
			"https://overpass-api.de/api/interpreter",
			"https://overpass.kumi.systems/api/interpreter",
			"https://overpass.openstreetmap.ru/api/interpreter",
		}
	}
	if cfg.Overpass.MaxRetries == 0 {
		cfg.Overpass.MaxRetries = 3
	}
	if cfg.Overpass.RetryDelay == 0 {
		cfg.Overpass.RetryDelay = 1 * time.Second
	}
	if cfg.Overpass.BackoffMultiplier == 0 {
		cfg.Overpass.BackoffMultiplier = 2.0
	}
	if cfg.Overpass.GlobalTimeout == 0 {
		cfg.Overpass.GlobalTimeout = 20 * time.Second
	}

	if cfg.Nominatim.BaseURL == "" {
		cfg.Nominatim.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Nominatim.RequestTimeout == 0 {
		cfg.Nominatim.RequestTimeout = 10 * time.Second
	}
	if cfg.Nominatim.Delay == 0 {
		cfg.Nominatim.Delay = 300 * time.Millisecond
	}
	if cfg.Nominatim.MaxRadiusKm == 0 {
		cfg.Nominatim.MaxRadiusKm = 10
	}

	if cfg.Search.MediumRadiusKm == 0 {
		cfg.Search.MediumRadiusKm = 3
	}
	if cfg.Search.SplitRadiusKm == 0 {
		cfg.Search.SplitRadiusKm = 10
	}
	if cfg.Search.VirtualRadiusKm == 0 {
		cfg.Search.VirtualRadiusKm = 50
	}
	if cfg.Search.MaxOverpassRadiusKm == 0 {
		cfg.Search.MaxOverpassRadiusKm = 15
	}
	if cfg.Search.DedupThresholdM == 0 {
		cfg.Search.DedupThresholdM = 50
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 100
	}

	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = 1 * time.Hour
	}
	if cfg.Cache.NominatimTTL == 0 {
		cfg.Cache.NominatimTTL = 2 * time.Hour
	}
	if cfg.Cache.AreaTTL == 0 {
		cfg.Cache.AreaTTL = 6 * time.Hour
	}
	if cfg.Cache.DetailsTTL == 0 {
		cfg.Cache.DetailsTTL = 24 * time.Hour
	}

	if cfg.Warmup.Delay == 0 {
		cfg.Warmup.Delay = 2 * time.Second
	}
}

func parseServerList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
