package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Collect CollectConfig `yaml:"collect" mapstructure:"collect"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Emit    EmitConfig    `yaml:"emit" mapstructure:"emit"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CollectConfig configures the store-locator scrape.
type CollectConfig struct {
	SearchURL   string  `yaml:"search_url" mapstructure:"search_url"`
	Referer     string  `yaml:"referer" mapstructure:"referer"`
	FormField   string  `yaml:"form_field" mapstructure:"form_field"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	FailFast    bool    `yaml:"fail_fast" mapstructure:"fail_fast"`
}

// GeocodeConfig configures the geocoding provider and the request gate.
type GeocodeConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	Email        string `yaml:"email" mapstructure:"email"`
	CountryCodes string `yaml:"country_codes" mapstructure:"country_codes"`
	GoogleKey    string `yaml:"google_key" mapstructure:"google_key"`
	DelayMS      int    `yaml:"delay_ms" mapstructure:"delay_ms"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts  int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	Journal      string `yaml:"journal" mapstructure:"journal"`
}

// Delay returns the minimum idle interval between geocoding requests.
func (g GeocodeConfig) Delay() time.Duration {
	return time.Duration(g.DelayMS) * time.Millisecond
}

// EmitConfig controls the shape of the generated Go source file.
type EmitConfig struct {
	Package    string `yaml:"package" mapstructure:"package"`
	TypeImport string `yaml:"type_import" mapstructure:"type_import"`
	TypeName   string `yaml:"type_name" mapstructure:"type_name"`
	VarName    string `yaml:"var_name" mapstructure:"var_name"`
	FuncName   string `yaml:"func_name" mapstructure:"func_name"`
	Comment    string `yaml:"comment" mapstructure:"comment"`
	Gofmt      bool   `yaml:"gofmt" mapstructure:"gofmt"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

var validProviders = map[string]bool{
	"nominatim": true,
	"census":    true,
	"google":    true,
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.Geocode.DelayMS < 0 {
		return eris.Errorf("config: geocode.delay_ms must be >= 0, got %d", c.Geocode.DelayMS)
	}
	if !validProviders[c.Geocode.Provider] {
		return eris.Errorf("config: unknown geocode.provider %q", c.Geocode.Provider)
	}
	if strings.TrimSpace(c.Geocode.UserAgent) == "" {
		return eris.New("config: geocode.user_agent is required")
	}
	if c.Geocode.Provider == "google" && c.Geocode.GoogleKey == "" {
		return eris.New("config: geocode.google_key is required for the google provider")
	}
	if c.Geocode.MaxAttempts < 1 {
		return eris.Errorf("config: geocode.max_attempts must be >= 1, got %d", c.Geocode.MaxAttempts)
	}
	if c.Emit.Package == "" || c.Emit.TypeName == "" || c.Emit.VarName == "" || c.Emit.FuncName == "" {
		return eris.New("config: emit.package, emit.type_name, emit.var_name and emit.func_name are required")
	}
	return nil
}

// Load reads configuration from config.yaml, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STOREGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("collect.search_url", "https://wakeabc.com/search-results")
	v.SetDefault("collect.referer", "https://wakeabc.com/search-our-inventory/")
	v.SetDefault("collect.form_field", "productSearch")
	v.SetDefault("collect.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("collect.timeout_secs", 30)
	v.SetDefault("collect.max_retries", 3)
	v.SetDefault("collect.rate_limit", 2.0)
	v.SetDefault("collect.fail_fast", false)
	v.SetDefault("geocode.provider", "nominatim")
	v.SetDefault("geocode.base_url", "")
	v.SetDefault("geocode.user_agent", "BourbonTracker/1.0 (geocoding update script)")
	v.SetDefault("geocode.email", "")
	v.SetDefault("geocode.country_codes", "")
	v.SetDefault("geocode.google_key", "")
	v.SetDefault("geocode.delay_ms", 1000)
	v.SetDefault("geocode.timeout_secs", 30)
	v.SetDefault("geocode.max_attempts", 1)
	v.SetDefault("geocode.journal", "")
	v.SetDefault("emit.package", "wake")
	v.SetDefault("emit.type_import", "github.com/jeffspahr/bourbontracker/pkg/tracker")
	v.SetDefault("emit.type_name", "tracker.Location")
	v.SetDefault("emit.var_name", "storeCoordinates")
	v.SetDefault("emit.func_name", "getStoreLocation")
	v.SetDefault("emit.comment", "Store coordinates for Wake County ABC stores")
	v.SetDefault("emit.gofmt", false)
	v.SetDefault("metrics.textfile", "")
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
