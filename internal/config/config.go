package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

// LevelForEnvironment maps APP_ENV to the log level used by every logger in the service.
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

// Config is the service configuration, read from the environment by LoadConfig.
type Config struct {
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// DatabaseURL wins over the discrete DB fields when set.
	DatabaseURL string `json:"database_url"`
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	LogLevel  string `json:"log_level"`
	JWTSecret string `json:"jwt_secret"`

	NutritionAppID    string        `json:"nutrition_app_id"`
	NutritionAppKey   string        `json:"nutrition_app_key"`
	NutritionBaseURL  string        `json:"nutrition_base_url"`
	NutritionTimeout  time.Duration `json:"nutrition_timeout"`
	NutritionRetryMax int           `json:"nutrition_retry_max"`
}

// String masks every secret so the config can be logged.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DatabaseURL: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], NutritionAppID: %s, NutritionAppKey: [REDACTED], NutritionBaseURL: %s, NutritionTimeout: %s, NutritionRetryMax: %d}",
		c.Environment, c.Port, c.Host, redactURL(c.DatabaseURL), c.DBDriver, c.DBHost, c.DBName, c.DBUser, c.DBPath, c.LogLevel,
		c.NutritionAppID, c.NutritionBaseURL, c.NutritionTimeout, c.NutritionRetryMax)
}

// NutritionEnabled reports whether credentials for the nutrition API are configured.
func (c *Config) NutritionEnabled() bool {
	return c.NutritionAppID != "" && c.NutritionAppKey != ""
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}
	return parsed.String()
}

// envInt parses key as an integer no smaller than min.
func envInt(key string, def, min int) (int, error) {
	raw := GetEnvWithDefault(key, strconv.Itoa(def))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if v < min {
		return 0, fmt.Errorf("invalid %s: must be at least %d, got %d", key, min, v)
	}
	return v, nil
}

// LoadConfig reads the configuration from the environment and rejects malformed
// numeric settings and database URLs.
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")

	port, err := envInt("APP_PORT", 8080, 1)
	if err != nil {
		return nil, err
	}
	timeoutSeconds, err := envInt("NUTRITION_TIMEOUT_SECONDS", 10, 1)
	if err != nil {
		return nil, err
	}
	retryMax, err := envInt("NUTRITION_RETRY_MAX", 1, 0)
	if err != nil {
		return nil, err
	}

	driver := GetEnvWithDefault("DB_DRIVER", "sqlite")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
		driver = "postgres"
	}

	conf := &Config{
		Environment:       GetEnvWithDefault("APP_ENV", "development"),
		Port:              port,
		Host:              GetEnvWithDefault("APP_HOST", "localhost"),
		DatabaseURL:       dbURL,
		DBDriver:          driver,
		DBHost:            GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:            GetEnvWithDefault("DB_PORT", "5432"),
		DBName:            GetEnvWithDefault("DB_NAME", "mealplanner"),
		DBUser:            GetEnvWithDefault("DB_USER", "user"),
		DBPassword:        GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:         GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:            GetEnvWithDefault("DB_PATH", "mealplanner.sqlite"),
		LogLevel:          GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:         GetEnvWithDefault("JWT_SECRET", "secret"),
		NutritionAppID:    os.Getenv("NUTRITIONIX_APP_ID"),
		NutritionAppKey:   os.Getenv("NUTRITIONIX_APP_KEY"),
		NutritionBaseURL:  GetEnvWithDefault("NUTRITIONIX_BASE_URL", "https://trackapi.nutritionix.com"),
		NutritionTimeout:  time.Duration(timeoutSeconds) * time.Second,
		NutritionRetryMax: retryMax,
	}
	log.WithField("config", conf.String()).Info("Configuration loaded")
	return conf, nil
}

// GetEnvWithDefault returns the value of key, or defaultValue when it is unset or empty.
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Debugf("Environment variable %s not set, using default value", key)
	return defaultValue
}

// GetEnvAsType converts the value of key to T. Unset keys, unparseable values and
// unsupported types yield defaultValue.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var parsed interface{}
	var err error
	switch any(defaultValue).(type) {
	case string:
		parsed = value
	case int:
		parsed, err = strconv.Atoi(value)
	case bool:
		parsed, err = strconv.ParseBool(value)
	case time.Duration:
		parsed, err = time.ParseDuration(value)
	default:
		return defaultValue
	}
	if err != nil {
		log.WithError(err).Warnf("Environment variable %s is not a valid %T, using default", key, defaultValue)
		return defaultValue
	}
	return parsed.(T)
}
