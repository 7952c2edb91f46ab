package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"APP_ENV", "APP_PORT", "APP_HOST", "LOG_LEVEL", "JWT_SECRET",
	"DATABASE_URL", "DB_DRIVER", "DB_PATH", "DB_PASSWORD",
	"NUTRITIONIX_APP_ID", "NUTRITIONIX_APP_KEY", "NUTRITIONIX_BASE_URL",
	"NUTRITION_TIMEOUT_SECONDS", "NUTRITION_RETRY_MAX",
}

func cleanupTestEnv() {
	for _, v := range configEnvVars {
		os.Unsetenv(v)
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "MISSING_KEY",
			defaultValue: "default_value",
			envValue:     "",
			expected:     "default_value",
		},
		{
			name:         "should return empty string default",
			key:          "EMPTY_KEY",
			defaultValue: "",
			envValue:     "",
			expected:     "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			result := GetEnvWithDefault(tt.key, tt.defaultValue)

			if result != tt.expected {
				t.Errorf("GetEnvWithDefault() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	t.Setenv("TYPED_INT", "42")
	t.Setenv("TYPED_BOOL", "true")
	t.Setenv("TYPED_DURATION", "1500ms")
	t.Setenv("TYPED_BAD_INT", "forty-two")

	assert.Equal(t, 42, GetEnvAsType("TYPED_INT", 0))
	assert.True(t, GetEnvAsType("TYPED_BOOL", false))
	assert.Equal(t, 1500*time.Millisecond, GetEnvAsType("TYPED_DURATION", time.Second))
	assert.Equal(t, 7, GetEnvAsType("TYPED_BAD_INT", 7))
	assert.Equal(t, "fallback", GetEnvAsType("TYPED_MISSING", "fallback"))
}

func TestLevelForEnvironment(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, LevelForEnvironment("development"))
	assert.Equal(t, logrus.ErrorLevel, LevelForEnvironment("production"))
	assert.Equal(t, logrus.InfoLevel, LevelForEnvironment("staging"))
}

func TestLoadConfig(t *testing.T) {
	setTestEnv := func() {
		os.Setenv("APP_PORT", "9000")
		os.Setenv("APP_HOST", "0.0.0.0")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("JWT_SECRET", "super_secret_jwt_key")
		os.Setenv("NUTRITIONIX_APP_ID", "app-id")
		os.Setenv("NUTRITIONIX_APP_KEY", "app-key")
		os.Setenv("NUTRITION_TIMEOUT_SECONDS", "3")
		os.Setenv("NUTRITION_RETRY_MAX", "0")
	}

	t.Run("successful config load with all env vars", func(t *testing.T) {
		setTestEnv()
		defer cleanupTestEnv()

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, config.Port)
		assert.Equal(t, "0.0.0.0", config.Host)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, 3*time.Second, config.NutritionTimeout)
		assert.Equal(t, 0, config.NutritionRetryMax)
		assert.True(t, config.NutritionEnabled())
	})

	t.Run("should fail with invalid port", func(t *testing.T) {
		cleanupTestEnv()
		os.Setenv("APP_PORT", "not_a_number")
		defer cleanupTestEnv()

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should fail with invalid database url", func(t *testing.T) {
		cleanupTestEnv()
		os.Setenv("DATABASE_URL", "not a url")
		defer cleanupTestEnv()

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should fail with non positive nutrition timeout", func(t *testing.T) {
		cleanupTestEnv()
		os.Setenv("NUTRITION_TIMEOUT_SECONDS", "0")
		defer cleanupTestEnv()

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("database url switches the driver to postgres", func(t *testing.T) {
		cleanupTestEnv()
		os.Setenv("DATABASE_URL", "postgres://meal:hunter2@db:5432/mealplanner")
		defer cleanupTestEnv()

		config, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "postgres", config.DBDriver)
	})

	t.Run("should use defaults when optional env vars not set", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8080, config.Port)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "sqlite", config.DBDriver)
		assert.Equal(t, "mealplanner.sqlite", config.DBPath)
		assert.Equal(t, 10*time.Second, config.NutritionTimeout)
		assert.Equal(t, 1, config.NutritionRetryMax)
		assert.False(t, config.NutritionEnabled())
	})
}

func TestConfigStringRedactsSecrets(t *testing.T) {
	conf := &Config{
		DatabaseURL:     "postgres://meal:hunter2@db:5432/mealplanner",
		DBPassword:      "db-password",
		JWTSecret:       "jwt-secret",
		NutritionAppKey: "nutrition-key",
	}

	out := conf.String()
	for _, secret := range []string{"hunter2", "db-password", "jwt-secret", "nutrition-key"} {
		assert.False(t, strings.Contains(out, secret), "secret %q leaked", secret)
	}
	assert.Contains(t, out, "@db:5432/mealplanner")
}

func BenchmarkGetEnvWithDefault(b *testing.B) {
	os.Setenv("BENCH_KEY", "test_value")
	defer os.Unsetenv("BENCH_KEY")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}
