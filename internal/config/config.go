package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/lake-route/internal/route"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Route   route.Options `yaml:"route" mapstructure:"route"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig configures where NDWI samples are loaded from.
type DatasetConfig struct {
	// Source is a GeoJSON path, a .zip or .shp path, an http(s):// or ftp://
	// URL, or one of the store names "sqlite" and "postgres".
	Source      string `yaml:"source" mapstructure:"source"`
	NDWIField   string `yaml:"ndwi_field" mapstructure:"ndwi_field"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// BatchConfig configures batch evaluation.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// FetchConfig configures remote dataset downloads.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`

	// Consecutive failed loads before remote and database sources are
	// skipped for BreakerResetSecs.
	BreakerFailures  int `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetSecs int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LAKEROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.source", "ndwi.geojson")
	v.SetDefault("dataset.ndwi_field", "NDWI")
	v.SetDefault("dataset.sqlite_path", "lake-route.db")
	v.SetDefault("dataset.database_url", "")
	v.SetDefault("dataset.temp_dir", "/tmp/lake-route")
	v.SetDefault("route.direct_max_points", route.DefaultDirectMaxPoints)
	v.SetDefault("route.quality_max_points", route.DefaultQualityMaxPoints)
	v.SetDefault("route.snap_tolerance", route.DefaultSnapTolerance)
	v.SetDefault("route.bbox_padding", route.DefaultBBoxPadding)
	v.SetDefault("route.min_quality", route.DefaultMinQuality)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.request_timeout_secs", 10)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "lake-route/1.0")
	v.SetDefault("fetch.breaker_failures", 3)
	v.SetDefault("fetch.breaker_reset_secs", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Known modes are
// "serve", "query", "batch" and "import".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RequestTimeoutSecs <= 0 {
			problems = append(problems, "server.request_timeout_secs must be > 0")
		}
		if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
			problems = append(problems, "server rate limit values must be >= 0")
		}
	case "query":
	case "batch":
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
			problems = append(problems, "batch.concurrency must be between 1 and 64")
		}
	case "import":
		if c.Dataset.Source == "sqlite" || c.Dataset.Source == "postgres" {
			problems = append(problems, "dataset.source must name a file or URL to import from")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Dataset.Source == "" {
		problems = append(problems, "dataset.source is required")
	}
	if c.Dataset.Source == "postgres" && c.Dataset.DatabaseURL == "" {
		problems = append(problems, "dataset.database_url is required for the postgres source")
	}
	if c.Route.DirectMaxPoints <= 0 || c.Route.QualityMaxPoints <= 0 {
		problems = append(problems, "route max points must be > 0")
	}
	if c.Route.SnapTolerance <= 0 || c.Route.BBoxPadding <= 0 {
		problems = append(problems, "route.snap_tolerance and route.bbox_padding must be > 0")
	}
	if c.Route.MinQuality < 1 || c.Route.MinQuality > 100 {
		problems = append(problems, "route.min_quality must be between 1 and 100")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
