package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all upstream requests.
const DefaultUserAgent = "ReelRoulette/1.0 (+https://github.com/Belphemur/ReelRoulette)"

// SectionConfig describes one library section that may be drawn from.
type SectionConfig struct {
	ID   int    `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type Config struct {
	ProxyConnectionString string          `mapstructure:"proxy_connection_string"`
	ClientTimeout         string          `mapstructure:"client_timeout"`   // Go duration string like "10s"
	ValidateTimeout       string          `mapstructure:"validate_timeout"` // Go duration string like "5s"
	UserAgent             string          `mapstructure:"user_agent"`
	Sections              []SectionConfig `mapstructure:"sections"`
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider      string `mapstructure:"provider"` // "memory" or "redis"
		Size          int    `mapstructure:"size"`     // Maximum number of section payloads kept
		TTL           string `mapstructure:"ttl"`      // Go duration string, "0s" disables caching
		RedisAddress  string `mapstructure:"redis_address"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
	} `mapstructure:"cache"`
	Settings struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
	} `mapstructure:"settings"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Spin struct {
		MinDuration     string `mapstructure:"min_duration"`
		MaxDuration     string `mapstructure:"max_duration"`
		FrameInterval   string `mapstructure:"frame_interval"`
		ViewTTL         string `mapstructure:"view_ttl"`
		MaxViews        int    `mapstructure:"max_views"`
		SettleTolerance string `mapstructure:"settle_tolerance"` // Clock skew accepted when a remote surface settles early
	} `mapstructure:"spin"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	// A .env file is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("client_timeout", "10s")
	v.SetDefault("validate_timeout", "5s")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 32)
	v.SetDefault("cache.ttl", "2m")
	v.SetDefault("settings.provider", "memory")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("spin.min_duration", "4s")
	v.SetDefault("spin.max_duration", "6s")
	v.SetDefault("spin.frame_interval", "16ms")
	v.SetDefault("spin.view_ttl", "30m")
	v.SetDefault("spin.max_views", 256)
	v.SetDefault("spin.settle_tolerance", "250ms")
	v.SetDefault("sections", []map[string]any{
		{"id": 1, "name": "Movies"},
		{"id": 2, "name": "TV Shows"},
	})
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("sentry_dsn", "SENTRY_DSN")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// Duration parses a Go duration string, falling back to def (with a warning) when
// the value is empty or invalid.
func Duration(name, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("setting", name).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}

// SectionIDs returns the allow-listed section ids in configuration order.
func (c *Config) SectionIDs() []int {
	ids := make([]int, 0, len(c.Sections))
	for _, s := range c.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}

// SectionName returns the configured display name of a section, or "" if the
// section is not allow-listed.
func (c *Config) SectionName(id int) string {
	for _, s := range c.Sections {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}

// AllowsSection reports whether id is part of the configured allow-list.
func (c *Config) AllowsSection(id int) bool {
	for _, s := range c.Sections {
		if s.ID == id {
			return true
		}
	}
	return false
}
