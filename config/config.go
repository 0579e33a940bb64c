package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Security SecurityConfig `mapstructure:"security"`
	Provider ProviderConfig `mapstructure:"provider"`
	Warnings WarningsConfig `mapstructure:"warnings"`
	Address  AddressConfig  `mapstructure:"address"`
	Shipping ShippingConfig `mapstructure:"shipping"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	Mode      string `mapstructure:"mode"`
	SecretKey string `mapstructure:"secret_key"`
	BaseURL   string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite | postgres
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	LogLevel     string `mapstructure:"log_level"`
}

// RedisConfig an empty Addr disables redis; sessions then live in process memory.
type RedisConfig struct {
	Addr             string        `mapstructure:"addr"`
	Password         string        `mapstructure:"password"`
	DB               int           `mapstructure:"db"`
	ProviderCacheTTL time.Duration `mapstructure:"provider_cache_ttl"`
	AlertChannel     string        `mapstructure:"alert_channel"`
}

type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	Secure     bool          `mapstructure:"secure"`
}

type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	UserInfoURL  string `mapstructure:"userinfo_url"`
	// AuthURL and TokenURL override the Google endpoints when set.
	AuthURL  string `mapstructure:"auth_url"`
	TokenURL string `mapstructure:"token_url"`
}

// AuthConfig decides which users are authorized on first login.
type AuthConfig struct {
	Admins         []string `mapstructure:"admins"`
	AllowedDomains []string `mapstructure:"allowed_domains"`
}

type SecurityConfig struct {
	// AppKeyHash bcrypt hash of the shipping integration key.
	AppKeyHash  string  `mapstructure:"app_key_hash"`
	AppKeyRate  float64 `mapstructure:"appkey_rate"`
	AppKeyBurst int     `mapstructure:"appkey_burst"`
}

type ProviderConfig struct {
	TexasURL   string        `mapstructure:"texas_url"`
	FederalURL string        `mapstructure:"federal_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type WarningsConfig struct {
	InmatesCacheTTL      int `mapstructure:"inmates_cache_ttl"`      // hours
	MinReleaseTimedelta  int `mapstructure:"min_release_timedelta"`  // days
	MinPostmarkTimedelta int `mapstructure:"min_postmark_timedelta"` // days
}

// AddressConfig return address printed on shipping labels.
type AddressConfig struct {
	Addressee string `mapstructure:"addressee" json:"addressee"`
	Street1   string `mapstructure:"street1" json:"street1"`
	Street2   string `mapstructure:"street2" json:"street2"`
	City      string `mapstructure:"city" json:"city"`
	State     string `mapstructure:"state" json:"state"`
	Zipcode   string `mapstructure:"zipcode" json:"zipcode"`
}

type ShippingConfig struct {
	UnitAddressName string `mapstructure:"unit_address_name"`
}

type MetricsConfig struct {
	Cutoff string `mapstructure:"cutoff"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// SetDefaults 注册默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8000")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.provider_cache_ttl", 10*time.Minute)
	v.SetDefault("redis.alert_channel", "ibp:alerts")

	v.SetDefault("session.cookie_name", "ibp_session")
	v.SetDefault("session.max_age", 12*time.Hour)

	v.SetDefault("oauth.userinfo_url", "https://www.googleapis.com/oauth2/v3/userinfo")

	v.SetDefault("security.appkey_rate", 5.0)
	v.SetDefault("security.appkey_burst", 20)

	v.SetDefault("provider.timeout", 30*time.Second)

	v.SetDefault("warnings.inmates_cache_ttl", 24)
	v.SetDefault("warnings.min_release_timedelta", 30)
	v.SetDefault("warnings.min_postmark_timedelta", 90)

	v.SetDefault("shipping.unit_address_name", "Mailroom Staff")
	v.SetDefault("metrics.cutoff", "2006-06-01")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.service_name", "ibp")
}

// Load 从默认 viper 实例加载配置
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads config.yaml (if present) plus IBP_* environment overrides into v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("IBP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验必要配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Metrics.Cutoff != "" {
		if _, err := time.Parse("2006-01-02", c.Metrics.Cutoff); err != nil {
			return fmt.Errorf("metrics.cutoff: %w", err)
		}
	}
	return nil
}

// MetricsCutoff returns the parsed metrics cutoff date.
func (c *Config) MetricsCutoff() time.Time {
	t, err := time.Parse("2006-01-02", c.Metrics.Cutoff)
	if err != nil {
		return time.Date(2006, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}
