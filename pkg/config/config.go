package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the issuance backend configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Chain        ChainConfig        `mapstructure:"chain"`
	Wallet       WalletConfig       `mapstructure:"wallet"`
	Provider     ProviderConfig     `mapstructure:"provider"`
	Minting      MintingConfig      `mapstructure:"minting"`
	Notification NotificationConfig `mapstructure:"notification"`
	Monitoring   MonitoringConfig   `mapstructure:"monitoring"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ChainConfig contains blockchain client settings
type ChainConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	ChainID           int64         `mapstructure:"chain_id"`
	RegistryContract  string        `mapstructure:"registry_contract"`
	StatusReadTimeout time.Duration `mapstructure:"status_read_timeout"`
	FallbackGasLimit  uint64        `mapstructure:"fallback_gas_limit"`
	MaxGasPrice       string        `mapstructure:"max_gas_price"`
}

// WalletConfig contains the admin signing wallet settings.
// The private key is read from the environment variable named by key_env,
// never from the config file itself.
type WalletConfig struct {
	KeyEnv         string        `mapstructure:"key_env"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ProviderConfig contains identity-verification provider settings.
// SyncInterval controls the server-side sweep that refreshes pending
// provider-backed requests; zero disables it.
type ProviderConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	AppToken     string        `mapstructure:"app_token"`
	SecretKey    string        `mapstructure:"secret_key"`
	LevelName    string        `mapstructure:"level_name"`
	WebhookURL   string        `mapstructure:"webhook_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

// MintingConfig contains the credential-minting service settings
type MintingConfig struct {
	URL     string        `mapstructure:"url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NotificationConfig contains transactional email settings.
// Mode selects the delivery path: "http" posts to the notification
// endpoint, "smtp" delivers directly, "log" only records the outbox row.
type NotificationConfig struct {
	Mode        string     `mapstructure:"mode"`
	EndpointURL string     `mapstructure:"endpoint_url"`
	FromAddress string     `mapstructure:"from_address"`
	SMTP        SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig contains SMTP relay settings
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "gsdc")

	// Chain defaults
	viper.SetDefault("chain.chain_id", 97)
	viper.SetDefault("chain.status_read_timeout", "10s")
	viper.SetDefault("chain.fallback_gas_limit", 150000)

	// Wallet defaults
	viper.SetDefault("wallet.key_env", "GSDC_ADMIN_KEY")
	viper.SetDefault("wallet.connect_timeout", "15s")

	// Provider defaults
	viper.SetDefault("provider.level_name", "id-and-liveness")
	viper.SetDefault("provider.timeout", "15s")
	viper.SetDefault("provider.sync_interval", "5m")

	// Minting defaults
	viper.SetDefault("minting.timeout", "15s")

	// Notification defaults
	viper.SetDefault("notification.mode", "log")
	viper.SetDefault("notification.from_address", "noreply@gsdc.com")
	viper.SetDefault("notification.smtp.port", 587)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if config.Chain.RegistryContract == "" {
		return fmt.Errorf("chain.registry_contract is required")
	}
	switch config.Notification.Mode {
	case "http":
		if config.Notification.EndpointURL == "" {
			return fmt.Errorf("notification.endpoint_url is required in http mode")
		}
	case "smtp":
		if config.Notification.SMTP.Host == "" {
			return fmt.Errorf("notification.smtp.host is required in smtp mode")
		}
	case "log":
	default:
		return fmt.Errorf("notification.mode must be one of http, smtp, log")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
