package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string          `yaml:"driver"` // "postgres" or "sqlite"
	Host            string          `yaml:"host"`
	Port            string          `yaml:"port"`
	User            string          `yaml:"user"`
	Password        string          `yaml:"password"`
	DBName          string          `yaml:"name"`
	SSLMode         string          `yaml:"ssl_mode"`
	SQLitePath      string          `yaml:"sqlite_path"`
	MaxIdleConns    int             `yaml:"max_idle_conns"`
	MaxOpenConns    int             `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration   `yaml:"conn_max_lifetime"`
	LogLevelName    string          `yaml:"log_level"`
	LogLevel        logger.LogLevel `yaml:"-"`
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string `yaml:"signing_key"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// MediaConfig controls where uploaded images live and how they are served
type MediaConfig struct {
	Root          string `yaml:"root"`
	URL           string `yaml:"url"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// RedisConfig holds the optional cache configuration. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Config holds all configuration
type Config struct {
	ServiceName string       `yaml:"service_name"`
	Server      ServerConfig `yaml:"server"`
	DB          DBConfig     `yaml:"db"`
	JWT         JWTConfig    `yaml:"jwt"`
	Log         LogConfig    `yaml:"log"`
	Media       MediaConfig  `yaml:"media"`
	Redis       RedisConfig  `yaml:"redis"`
}

// Default returns the configuration used when neither a config file nor env vars are present.
func Default() *Config {
	return &Config{
		ServiceName: "recipe-app-api",
		Server: ServerConfig{
			Port:            "8000",
			Env:             "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		DB: DBConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "password",
			DBName:          "recipe_app",
			SSLMode:         "disable",
			SQLitePath:      "recipe_app.db",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 1 * time.Hour,
			LogLevelName:    "warn",
		},
		JWT: JWTConfig{
			SigningKey:      "recipeappsecretkey",
			ExpirationHours: 24,
		},
		Log: LogConfig{
			Level: "info",
		},
		Media: MediaConfig{
			Root:          "media",
			URL:           "/media",
			MaxUploadSize: 10 * 1024 * 1024,
		},
		Redis: RedisConfig{
			TTL: 5 * time.Minute,
		},
	}
}

// Load loads configuration from defaults, an optional YAML file and environment variables,
// in that order of precedence (environment wins).
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := Default()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := config.loadFile(path); err != nil {
		return nil, err
	}

	config.applyEnv()
	config.DB.LogLevel = parseLogLevel(config.DB.LogLevelName, logger.Warn)

	return config, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)

	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Env = getEnv("APP_ENV", c.Server.Env)
	c.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.DB.Driver = getEnv("DB_DRIVER", c.DB.Driver)
	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.DBName = getEnv("DB_NAME", c.DB.DBName)
	c.DB.SSLMode = getEnv("DB_SSL_MODE", c.DB.SSLMode)
	c.DB.SQLitePath = getEnv("DB_SQLITE_PATH", c.DB.SQLitePath)
	c.DB.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", c.DB.MaxIdleConns)
	c.DB.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", c.DB.MaxOpenConns)
	c.DB.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", c.DB.ConnMaxLifetime)
	c.DB.LogLevelName = getEnv("DB_LOG_LEVEL", c.DB.LogLevelName)

	c.JWT.SigningKey = getEnv("JWT_SIGNING_KEY", c.JWT.SigningKey)
	c.JWT.ExpirationHours = getEnvAsInt("JWT_EXPIRATION_HOURS", c.JWT.ExpirationHours)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	c.Media.Root = getEnv("MEDIA_ROOT", c.Media.Root)
	c.Media.URL = getEnv("MEDIA_URL", c.Media.URL)
	c.Media.MaxUploadSize = int64(getEnvAsInt("MEDIA_MAX_UPLOAD_SIZE", int(c.Media.MaxUploadSize)))

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvAsDuration("REDIS_TTL", c.Redis.TTL)
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func parseLogLevel(value string, defaultValue logger.LogLevel) logger.LogLevel {
	switch value {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
