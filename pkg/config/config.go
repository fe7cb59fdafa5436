package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Required fields
	JWTSecretKey string `mapstructure:"jwt_secret_key"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Storage
	DBDriver    string `mapstructure:"db_driver"` // "sqlite", "postgres" or "mysql"
	DatabaseURL string `mapstructure:"database_url"`

	// Optional auth settings
	JWTAlgorithm string        `mapstructure:"jwt_algorithm"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`

	// Uploads
	UploadDir      string `mapstructure:"upload_dir"`
	AvatarsDir     string `mapstructure:"avatars_dir"`
	BackgroundsDir string `mapstructure:"backgrounds_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`

	// Optional logging settings
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	ConfigPath string `mapstructure:"-"`
}

const (
	DefaultConfigPath     = "homedash.yml"
	DefaultEnvFile        = ".env"
	EnvPrefix             = "HOMEDASH"
	DefaultAPIHost        = "0.0.0.0"
	DefaultAPIPort        = 8000
	DefaultDBDriver       = "sqlite"
	DefaultDatabaseURL    = "smart_home.db"
	DefaultJWTAlgorithm   = "HS256"
	DefaultTokenTTL       = 30 * time.Minute
	DefaultBcryptCost     = 10
	DefaultUploadDir      = "uploads"
	DefaultMaxUploadBytes = 10 << 20
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
)

var DefaultCORSOrigins = []string{"http://localhost:3000"}

// Load reads configuration from configPath, the environment (HOMEDASH_*) and
// a .env file in the working directory. An empty configPath means
// DefaultConfigPath, which may be absent; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(DefaultEnvFile); err != nil {
		return nil, err
	}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("jwt_secret_key", "")
	v.SetDefault("api_host", DefaultAPIHost)
	v.SetDefault("api_port", DefaultAPIPort)
	v.SetDefault("ssl_cert", "")
	v.SetDefault("ssl_key", "")
	v.SetDefault("cors_origins", DefaultCORSOrigins)
	v.SetDefault("db_driver", DefaultDBDriver)
	v.SetDefault("database_url", DefaultDatabaseURL)
	v.SetDefault("jwt_algorithm", DefaultJWTAlgorithm)
	v.SetDefault("token_ttl", DefaultTokenTTL)
	v.SetDefault("bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("upload_dir", DefaultUploadDir)
	v.SetDefault("avatars_dir", "")
	v.SetDefault("backgrounds_dir", "")
	v.SetDefault("max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)

	// Allow environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); err == nil || explicit {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath
	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv exports the variables in path into the process environment
// without overriding ones that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func (c *Config) applyDerived() {
	if c.AvatarsDir == "" {
		c.AvatarsDir = filepath.Join(c.UploadDir, "avatars")
	}
	if c.BackgroundsDir == "" {
		c.BackgroundsDir = filepath.Join(c.UploadDir, "backgrounds")
	}
	c.DBDriver = strings.ToLower(c.DBDriver)
	c.JWTAlgorithm = strings.ToUpper(c.JWTAlgorithm)
}

func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("jwt_secret_key is required")
	}

	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("db_driver must be 'sqlite', 'postgres' or 'mysql'")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("jwt_algorithm must be HS256, HS384 or HS512")
	}

	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535")
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be 'json' or 'text'")
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

// Addr is the listen address of the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

func (c *Config) TLSEnabled() bool {
	return c.SSLCert != "" && c.SSLKey != ""
}

func (c *Config) IsDevMode() bool {
	return os.Getenv("HOMEDASH_DEV_MODE") == "1"
}
