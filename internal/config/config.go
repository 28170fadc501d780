package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Oracle    OracleConfig    `yaml:"oracle" mapstructure:"oracle"`
	Tracing   TracingConfig   `yaml:"tracing" mapstructure:"tracing"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string         `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string         `yaml:"database_url" mapstructure:"database_url"`
	Postgres    PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
	MaxConns    int32          `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32          `yaml:"min_conns" mapstructure:"min_conns"`
}

// PostgresConfig holds the connection components used when no database_url
// is set.
type PostgresConfig struct {
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Name     string `yaml:"name" mapstructure:"name"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key              string `yaml:"key" mapstructure:"key"`
	Model            string `yaml:"model" mapstructure:"model"`
	MaxTokens        int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	WebSearchMaxUses int64  `yaml:"web_search_max_uses" mapstructure:"web_search_max_uses"`
}

// OracleConfig configures retries of oracle calls.
type OracleConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// TracingConfig configures OpenTelemetry trace export.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	Exporter    string `yaml:"exporter" mapstructure:"exporter"`
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ReadTimeoutSecs     int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs    int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// IngestConfig configures dataset loading.
type IngestConfig struct {
	DatasetPath string `yaml:"dataset_path" mapstructure:"dataset_path"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	MaxValue    int64  `yaml:"max_value" mapstructure:"max_value"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envAliases binds keys to the unprefixed variable names deployments
// already use. The prefixed JEOPARDY_* name always wins.
var envAliases = map[string][]string{
	"store.database_url":      {"DATABASE_URL"},
	"store.postgres.user":     {"POSTGRES_USER"},
	"store.postgres.password": {"POSTGRES_PASSWORD"},
	"store.postgres.host":     {"POSTGRES_HOST"},
	"store.postgres.port":     {"POSTGRES_PORT"},
	"store.postgres.name":     {"POSTGRES_DB"},
	"anthropic.key":           {"ANTHROPIC_API_KEY"},
	"tracing.enabled":         {"PHOENIX_ENABLED"},
	"tracing.endpoint":        {"PHOENIX_ENDPOINT"},
	"ingest.dataset_path":     {"DATASET_PATH"},
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JEOPARDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		envs := append([]string{"JEOPARDY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.postgres.user", "postgres")
	v.SetDefault("store.postgres.password", "postgres")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.name", "jeopardy")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.web_search_max_uses", 3)
	v.SetDefault("oracle.max_attempts", 3)
	v.SetDefault("oracle.initial_backoff_ms", 500)
	v.SetDefault("oracle.max_backoff_ms", 5000)
	v.SetDefault("tracing.enabled", true)
	v.SetDefault("tracing.endpoint", "http://127.0.0.1:6006/v1/traces")
	v.SetDefault("tracing.exporter", "otlp")
	v.SetDefault("tracing.service_name", "jeopardy-api")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout_secs", 15)
	v.SetDefault("server.write_timeout_secs", 120)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("ingest.dataset_path", "dataset.csv")
	v.SetDefault("ingest.batch_size", 1000)
	v.SetDefault("ingest.max_value", 0)
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

// DatabaseURL returns the store connection string. For postgres an explicit
// database_url wins; otherwise one is assembled from the postgres
// components. For sqlite it is the database file path.
func (c *Config) DatabaseURL() string {
	if c.Store.DatabaseURL != "" {
		return c.Store.DatabaseURL
	}
	if c.Store.Driver == "sqlite" {
		return "jeopardy.db"
	}
	pg := c.Store.Postgres
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(pg.User, pg.Password),
		Host:   net.JoinHostPort(pg.Host, strconv.Itoa(pg.Port)),
		Path:   "/" + pg.Name,
	}
	return u.String()
}

// Validate checks the fields a command needs before it starts.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be postgres or sqlite, got %q", c.Store.Driver))
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		errs = append(errs, c.oracleErrors()...)
	case "play", "mcp":
		errs = append(errs, c.oracleErrors()...)
	case "ingest":
		if c.Ingest.BatchSize <= 0 {
			errs = append(errs, "ingest.batch_size must be > 0")
		}
		if c.Ingest.MaxValue < 0 {
			errs = append(errs, "ingest.max_value must be >= 0")
		}
	case "migrate":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) oracleErrors() []string {
	var errs []string
	if c.Anthropic.Key == "" {
		errs = append(errs, "anthropic.key is required")
	}
	if c.Oracle.MaxAttempts < 1 {
		errs = append(errs, "oracle.max_attempts must be >= 1")
	}
	return errs
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
