package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fuelops/backend/internal/domain/fuel"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Migration MigrationConfig
	Fuel      FuelConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	LogLevel        string
}

// RedisConfig holds Redis connection settings for the workspace store
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// MigrationConfig locates the SQL migration files
type MigrationConfig struct {
	Path string
}

// FuelConfig holds the site conventions used when reconciling reports
type FuelConfig struct {
	HubCode            string
	MobileFleetPrefix  string
	SkidTankPrefix     string
	StaticTankPattern  string
	ReviewThreshold    float64 // liters
	ClearAfterSubmit   bool
	WorkspaceTTL       time.Duration
	DefaultUsageSource string
}

// Load reads configuration. Priority, highest first:
// 1. Environment variables with FUEL_ prefix (e.g. FUEL_FUEL_HUB_CODE)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("FUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Migration: MigrationConfig{
			Path: v.GetString("migration.path"),
		},
		Fuel: FuelConfig{
			HubCode:            v.GetString("fuel.hub_code"),
			MobileFleetPrefix:  v.GetString("fuel.mobile_fleet_prefix"),
			SkidTankPrefix:     v.GetString("fuel.skid_tank_prefix"),
			StaticTankPattern:  v.GetString("fuel.static_tank_pattern"),
			ReviewThreshold:    v.GetFloat64("fuel.review_threshold"),
			ClearAfterSubmit:   v.GetBool("fuel.clear_after_submit"),
			WorkspaceTTL:       v.GetDuration("fuel.workspace_ttl"),
			DefaultUsageSource: v.GetString("fuel.default_usage_source"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fuel-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "fuel"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "fuel.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 5 << 20 // 5MB, report texts and calibration CSVs are small
	}

	if cfg.Migration.Path == "" {
		cfg.Migration.Path = "migrations"
	}

	defaults := fuel.DefaultPolicy()
	if cfg.Fuel.HubCode == "" {
		cfg.Fuel.HubCode = defaults.HubCode
	}
	if cfg.Fuel.MobileFleetPrefix == "" {
		cfg.Fuel.MobileFleetPrefix = defaults.MobileFleetPrefix
	}
	if cfg.Fuel.SkidTankPrefix == "" {
		cfg.Fuel.SkidTankPrefix = defaults.SkidTankPrefix
	}
	if cfg.Fuel.StaticTankPattern == "" {
		cfg.Fuel.StaticTankPattern = defaults.StaticTankPattern.String()
	}
	if cfg.Fuel.ReviewThreshold == 0 {
		cfg.Fuel.ReviewThreshold = defaults.ReviewThreshold.InexactFloat64()
	}
	if cfg.Fuel.WorkspaceTTL == 0 {
		cfg.Fuel.WorkspaceTTL = 12 * time.Hour
	}
	if cfg.Fuel.DefaultUsageSource == "" {
		cfg.Fuel.DefaultUsageSource = string(fuel.UsageSourceFlowmeter)
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if _, err := regexp.Compile(c.Fuel.StaticTankPattern); err != nil {
		return fmt.Errorf("fuel.static_tank_pattern is not a valid regular expression: %w", err)
	}
	if c.Fuel.ReviewThreshold < 0 {
		return fmt.Errorf("fuel.review_threshold cannot be negative")
	}
	if _, err := fuel.ParseUsageSource(c.Fuel.DefaultUsageSource); err != nil {
		return fmt.Errorf("fuel.default_usage_source: %w", err)
	}

	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Policy converts the fuel settings into reconciliation conventions
func (f *FuelConfig) Policy() (fuel.Policy, error) {
	pattern, err := regexp.Compile(f.StaticTankPattern)
	if err != nil {
		return fuel.Policy{}, fmt.Errorf("compile static tank pattern: %w", err)
	}
	return fuel.Policy{
		HubCode:           fuel.NormalizeUnitID(f.HubCode),
		MobileFleetPrefix: f.MobileFleetPrefix,
		SkidTankPrefix:    f.SkidTankPrefix,
		StaticTankPattern: pattern,
		ReviewThreshold:   decimal.NewFromFloat(f.ReviewThreshold),
	}, nil
}
