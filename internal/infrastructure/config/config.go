package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Decay        DecayConfig
	Reconcile    ReconcileConfig
	Payout       PayoutConfig
	Marketplaces MarketplacesConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// DecayConfig holds price decay engine configuration
type DecayConfig struct {
	Enabled     bool
	RunHour     int           // local hour of day for the daily run
	GateDays    int           // days since last price update before a drop
	Factor      float64       // per-cycle price multiplier
	JobTimeout  time.Duration // wall-clock budget per run
	BatchSize   int
	MaxParallel int
}

// ReconcileConfig holds sold reconciliation engine configuration
type ReconcileConfig struct {
	Enabled     bool
	Interval    time.Duration
	JobTimeout  time.Duration
	BatchSize   int
	MaxParallel int
	// Priority lists channel codes in sale attribution order
	Priority []string
}

// PayoutConfig holds payout validation configuration
type PayoutConfig struct {
	MinimumAmount float64
}

// MarketplaceConfig holds one channel adapter's settings
type MarketplaceConfig struct {
	Enabled        bool
	BaseURL        string
	APIKey         string
	APISecret      string
	TimeoutSeconds int
	FeeRate        float64 // fraction of the sale price the channel keeps
}

// MarketplacesConfig holds the per-channel adapter settings
type MarketplacesConfig struct {
	Ebay    MarketplaceConfig
	Etsy    MarketplaceConfig
	Depop   MarketplaceConfig
	Mercari MarketplaceConfig
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CROSSLIST_ prefix (e.g., CROSSLIST_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("CROSSLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
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
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
		},
		Decay: DecayConfig{
			Enabled:     v.GetBool("decay.enabled"),
			RunHour:     v.GetInt("decay.run_hour"),
			GateDays:    v.GetInt("decay.gate_days"),
			Factor:      v.GetFloat64("decay.factor"),
			JobTimeout:  v.GetDuration("decay.job_timeout"),
			BatchSize:   v.GetInt("decay.batch_size"),
			MaxParallel: v.GetInt("decay.max_parallel"),
		},
		Reconcile: ReconcileConfig{
			Enabled:     v.GetBool("reconcile.enabled"),
			Interval:    v.GetDuration("reconcile.interval"),
			JobTimeout:  v.GetDuration("reconcile.job_timeout"),
			BatchSize:   v.GetInt("reconcile.batch_size"),
			MaxParallel: v.GetInt("reconcile.max_parallel"),
			Priority:    v.GetStringSlice("reconcile.priority"),
		},
		Payout: PayoutConfig{
			MinimumAmount: v.GetFloat64("payout.minimum_amount"),
		},
		Marketplaces: MarketplacesConfig{
			Ebay:    loadMarketplace(v, "ebay"),
			Etsy:    loadMarketplace(v, "etsy"),
			Depop:   loadMarketplace(v, "depop"),
			Mercari: loadMarketplace(v, "mercari"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadMarketplace(v *viper.Viper, name string) MarketplaceConfig {
	prefix := "marketplaces." + name
	return MarketplaceConfig{
		Enabled:        v.GetBool(prefix + ".enabled"),
		BaseURL:        v.GetString(prefix + ".base_url"),
		APIKey:         v.GetString(prefix + ".api_key"),
		APISecret:      v.GetString(prefix + ".api_secret"),
		TimeoutSeconds: v.GetInt(prefix + ".timeout_seconds"),
		FeeRate:        v.GetFloat64(prefix + ".fee_rate"),
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "crosslist-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.Database.DBName = "crosslist"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
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
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Decay.GateDays == 0 {
		cfg.Decay.GateDays = 7
	}
	if cfg.Decay.Factor == 0 {
		cfg.Decay.Factor = 0.9
	}
	if cfg.Decay.JobTimeout == 0 {
		cfg.Decay.JobTimeout = 30 * time.Minute
	}
	if cfg.Decay.BatchSize == 0 {
		cfg.Decay.BatchSize = 500
	}
	if cfg.Decay.MaxParallel == 0 {
		cfg.Decay.MaxParallel = 4
	}
	if cfg.Reconcile.Interval == 0 {
		cfg.Reconcile.Interval = 15 * time.Minute
	}
	if cfg.Reconcile.JobTimeout == 0 {
		cfg.Reconcile.JobTimeout = 10 * time.Minute
	}
	if cfg.Reconcile.BatchSize == 0 {
		cfg.Reconcile.BatchSize = 500
	}
	if cfg.Reconcile.MaxParallel == 0 {
		cfg.Reconcile.MaxParallel = 4
	}
	if len(cfg.Reconcile.Priority) == 0 {
		cfg.Reconcile.Priority = []string{"EBAY", "ETSY", "DEPOP", "MERCARI"}
	}
	if cfg.Payout.MinimumAmount == 0 {
		cfg.Payout.MinimumAmount = 50.00
	}
	applyMarketplaceDefaults(&cfg.Marketplaces.Ebay)
	applyMarketplaceDefaults(&cfg.Marketplaces.Etsy)
	applyMarketplaceDefaults(&cfg.Marketplaces.Depop)
	applyMarketplaceDefaults(&cfg.Marketplaces.Mercari)
}

func applyMarketplaceDefaults(mc *MarketplaceConfig) {
	if mc.TimeoutSeconds == 0 {
		mc.TimeoutSeconds = 10
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
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

	if c.Decay.Factor <= 0 || c.Decay.Factor >= 1 {
		return fmt.Errorf("decay.factor must be between 0 and 1, got %v", c.Decay.Factor)
	}
	if c.Decay.GateDays <= 0 {
		return fmt.Errorf("decay.gate_days must be positive")
	}
	if c.Decay.RunHour < 0 || c.Decay.RunHour > 23 {
		return fmt.Errorf("decay.run_hour must be between 0 and 23")
	}
	if c.Payout.MinimumAmount <= 0 {
		return fmt.Errorf("payout.minimum_amount must be positive")
	}

	// Production-specific validation
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	seen := make(map[string]bool)
	for _, code := range c.Reconcile.Priority {
		if seen[code] {
			return fmt.Errorf("reconcile.priority contains duplicate channel %q", code)
		}
		seen[code] = true
	}

	// Enabled marketplaces need connection settings
	for name, mc := range map[string]MarketplaceConfig{
		"ebay":    c.Marketplaces.Ebay,
		"etsy":    c.Marketplaces.Etsy,
		"depop":   c.Marketplaces.Depop,
		"mercari": c.Marketplaces.Mercari,
	} {
		if !mc.Enabled {
			continue
		}
		if mc.BaseURL == "" {
			return fmt.Errorf("marketplaces.%s.base_url is required when enabled", name)
		}
		if _, err := url.ParseRequestURI(mc.BaseURL); err != nil {
			return fmt.Errorf("marketplaces.%s.base_url is not a valid URL: %w", name, err)
		}
		if mc.APIKey == "" {
			return fmt.Errorf("marketplaces.%s.api_key is required when enabled", name)
		}
		if mc.FeeRate < 0 || mc.FeeRate >= 1 {
			return fmt.Errorf("marketplaces.%s.fee_rate must be in [0, 1)", name)
		}
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// GateDuration returns the decay gate as a duration
func (d *DecayConfig) GateDuration() time.Duration {
	return time.Duration(d.GateDays) * 24 * time.Hour
}

// RedisAddr returns the host:port address for the Redis client
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
