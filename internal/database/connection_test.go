package database

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:" + uuid.New().String() + "?mode=memory&cache=shared",
	}
}

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "postgres from parts",
			config: DatabaseConfig{
				Driver: "postgres", Host: "db", Port: "5432", User: "meal",
				Password: "pw", Name: "plans", SSLMode: "disable",
			},
			expected: "host=db user=meal password=pw dbname=plans port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			config:   DatabaseConfig{Driver: "postgresql", URL: "postgres://meal:pw@db/plans", Host: "ignored"},
			expected: "postgres://meal:pw@db/plans",
		},
		{
			name:     "sqlite path",
			config:   DatabaseConfig{Driver: "sqlite", Path: "plans.sqlite"},
			expected: "plans.sqlite",
		},
		{
			name:     "empty driver defaults to sqlite",
			config:   DatabaseConfig{Path: "plans.sqlite"},
			expected: "plans.sqlite",
		},
		{
			name:     "unknown driver",
			config:   DatabaseConfig{Driver: "mysql"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestDatabaseConfigStringRedactsPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", URL: "postgres://meal:pw@db/plans", Password: "pw"}
	out := cfg.String()
	assert.NotContains(t, out, "pw@")
	assert.NotContains(t, out, "Password: pw")
	assert.Contains(t, out, "[REDACTED]")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInitDatabaseSQLiteAndMigrate(t *testing.T) {
	db, err := InitDatabase(memoryConfig())
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []interface{}{
		&models.Recipe{}, &models.Ingredient{}, &models.RecipeIngredient{},
		&models.NutritionProfile{}, &models.Tag{}, &models.RecipeTag{},
		&models.MealPlan{}, &models.MealPlanItem{}, &models.User{},
		&models.OAuthClient{}, &models.OAuthToken{},
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table for %T", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestInitDatabaseGivesUpAfterRetries(t *testing.T) {
	original := retryDelays
	retryDelays = []time.Duration{time.Millisecond, time.Millisecond}
	defer func() { retryDelays = original }()

	// A directory that does not exist cannot hold the database file.
	_, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: "/nonexistent-dir/" + uuid.New().String() + "/db.sqlite"})
	assert.ErrorContains(t, err, "after 2 attempts")
}
