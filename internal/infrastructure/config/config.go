package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/pawhaven/pawhaven/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Auth         sharedConfig.AuthConfig         `mapstructure:"auth"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Email        sharedConfig.EmailConfig        `mapstructure:"email"`
	Gateway      sharedConfig.GatewayConfig      `mapstructure:"gateway"`
	Subscription sharedConfig.SubscriptionConfig `mapstructure:"subscription"`
	Guardianship sharedConfig.GuardianshipConfig `mapstructure:"guardianship"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("PAWHAVEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.timezone", "Europe/Kyiv")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "pawhaven_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	viper.SetDefault("auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("auth.access_exp_minutes", 15)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Email defaults
	viper.SetDefault("email.host", "localhost")
	viper.SetDefault("email.port", 587)
	viper.SetDefault("email.from_address", "no-reply@pawhaven.org")
	viper.SetDefault("email.from_name", "PawHaven")

	// Gateway defaults
	viper.SetDefault("gateway.api_url", "https://www.liqpay.ua/api/request")
	viper.SetDefault("gateway.checkout_url", "https://www.liqpay.ua/api/3/checkout")
	viper.SetDefault("gateway.timeout_seconds", 10)

	// Lifecycle defaults
	viper.SetDefault("subscription.retry_tolerance_hours", 72)
	viper.SetDefault("subscription.sweep_interval_minutes", 60)
	viper.SetDefault("guardianship.grace_period_days", 14)
	viper.SetDefault("guardianship.sweep_interval_minutes", 60)
}
