package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/tuncerburak97/bekci/internal/httplog"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type ProxyConfig struct {
	Target                string        `mapstructure:"target"`
	Timeout               time.Duration `mapstructure:"timeout"`
	MaxIdleConns          int           `mapstructure:"max_idle_conns"`
	IdleConnTimeout       time.Duration `mapstructure:"idle_conn_timeout"`
	TLSTimeout            time.Duration `mapstructure:"tls_timeout"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout"`
	ExpectContinueTimeout time.Duration `mapstructure:"expect_continue_timeout"`
	MaxConnsPerHost       int           `mapstructure:"max_conns_per_host"`
}

// LogConfig drives the interceptor. include_debug_logging is tri-state:
// unset follows the level, "true"/"false" force the debug fields on/off.
type LogConfig struct {
	Level               string   `mapstructure:"level"`
	Format              string   `mapstructure:"format"`
	DurationUnit        string   `mapstructure:"duration_unit"`
	IncludeDebugLogging string   `mapstructure:"include_debug_logging"`
	FilteredKeys        []string `mapstructure:"filtered_keys"`
	SuppressedKeys      []string `mapstructure:"suppressed_keys"`
	LogRequests         bool     `mapstructure:"log_requests"`
	LogResponses        bool     `mapstructure:"log_responses"`
}

type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Type     string `mapstructure:"type"` // postgres, mongodb, couchbase, oracle
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Pool     struct {
		MaxConns  int `mapstructure:"max_conns"`
		MinConns  int `mapstructure:"min_conns"`
		BatchSize int `mapstructure:"batch_size"`
	} `mapstructure:"pool"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Dir(configPath))
	viper.SetConfigFile(configPath)

	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.duration_unit", "milliseconds")
	viper.SetDefault("log.log_responses", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Options resolves the log section into interceptor options. Resolution
// happens once here; the interceptor never reads ambient configuration at
// call time.
func (c *LogConfig) Options() (httplog.Options, error) {
	level, err := httplog.ParseLevel(c.Level)
	if err != nil {
		return httplog.Options{}, err
	}

	opts := httplog.Options{
		Level:          level,
		DurationUnit:   httplog.DurationUnit(c.DurationUnit),
		FilteredKeys:   c.FilteredKeys,
		SuppressedKeys: c.SuppressedKeys,
	}

	switch c.IncludeDebugLogging {
	case "":
		opts.IncludeDebug = httplog.DebugDefault
	case "true":
		opts.IncludeDebug = httplog.DebugOn
	case "false":
		opts.IncludeDebug = httplog.DebugOff
	default:
		return httplog.Options{}, fmt.Errorf("invalid include_debug_logging %q", c.IncludeDebugLogging)
	}

	if c.LogRequests {
		opts.ShouldLogRequest = func(*httplog.Snapshot) bool { return true }
	}
	if !c.LogResponses {
		opts.ShouldLogResponse = func(*httplog.Snapshot) bool { return false }
	}

	return opts, nil
}
