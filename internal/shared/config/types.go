// Package config defines the configuration structures shared across the
// application. Loading is handled by internal/infrastructure/config.
package config

import "fmt"

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GetAddr returns the listen address in host:port form.
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // console or json
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the redis address in host:port form.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret" validate:"required"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

// GatewayConfig holds the payment gateway credentials and endpoints.
// PrivateKey signs checkout payloads and verifies webhook callbacks.
type GatewayConfig struct {
	PublicKey      string `mapstructure:"public_key" validate:"required"`
	PrivateKey     string `mapstructure:"private_key" validate:"required"`
	APIURL         string `mapstructure:"api_url" validate:"required,url"`
	CheckoutURL    string `mapstructure:"checkout_url" validate:"required,url"`
	CallbackURL    string `mapstructure:"callback_url"`
	ResultURL      string `mapstructure:"result_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SubscriptionConfig struct {
	// RetryToleranceHours is how long a subscription may stay past_due
	// before the reconciliation sweep cancels it.
	RetryToleranceHours  int `mapstructure:"retry_tolerance_hours"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

type GuardianshipConfig struct {
	// GracePeriodDays is the window a guardianship stays in grace after a
	// failed charge before it is auto-completed.
	GracePeriodDays      int `mapstructure:"grace_period_days"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

type EmailConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}
