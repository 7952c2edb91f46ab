package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/docs"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/auth"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/config"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/controllers"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/nutrition"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const tokenPurgeInterval = time.Hour

// @title Meal Planner API
// @version 1.0
// @description Recipes, weekly meal plans, shopping lists and nutrition summaries
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	loadDotenvFile()
	setUpLogger()

	configuration := loadConfig()
	if level, err := log.ParseLevel(configuration.LogLevel); err == nil {
		log.SetLevel(level)
		database.SetLogLevel(level)
	}

	db := setupDatabase(configuration)

	oauthService := auth.NewOAuthService(db, configuration.JWTSecret)
	router := setupRouter(db, configuration, oauthService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go purgeExpiredTokens(ctx, auth.NewGormTokenStore(db))

	addr := fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)
	docs.SwaggerInfo.Host = addr
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Infof("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", "development")))
}

func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates and optionally seeds the catalogue.
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))

	if config.GetEnvAsType("SEED_DATABASE", conf.Environment == "development") {
		seedDatabase(db)
	}
	return db
}

// seedDatabase fills an empty ingredient catalogue with common staples.
func seedDatabase(db *gorm.DB) {
	var count int64
	db.Model(&models.Ingredient{}).Count(&count)
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return
	}

	log.Info("Seeding database with initial data")
	ingredients := []models.Ingredient{
		{Name: "Butter", Unit: models.UnitGrams},
		{Name: "Egg", Unit: models.UnitUnits},
		{Name: "Flour", Unit: models.UnitGrams},
		{Name: "Milk", Unit: models.UnitMilliliters},
		{Name: "Olive oil", Unit: models.UnitMilliliters},
		{Name: "Rice", Unit: models.UnitGrams},
		{Name: "Sugar", Unit: models.UnitGrams},
		{Name: "Tomato", Unit: models.UnitUnits},
	}
	tags := []models.Tag{{Name: "breakfast"}, {Name: "quick"}, {Name: "vegetarian"}}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ingredients).Error; err != nil {
			return err
		}
		return tx.Create(&tags).Error
	})
	if err != nil {
		log.WithError(err).Error("Seeding database failed")
		return
	}
	log.Info("Database seeded successfully")
}

func nutritionLookup(conf *config.Config) nutrition.Lookuper {
	if !conf.NutritionEnabled() {
		log.Warn("Nutrition API credentials not set, nutrition lookups are disabled")
		return nutrition.Disabled{}
	}
	return nutrition.NewClient(nutrition.Config{
		AppID:    conf.NutritionAppID,
		AppKey:   conf.NutritionAppKey,
		BaseURL:  conf.NutritionBaseURL,
		Timeout:  conf.NutritionTimeout,
		RetryMax: conf.NutritionRetryMax,
	})
}

// setupRouter builds services and controllers and mounts every route.
func setupRouter(db *gorm.DB, conf *config.Config, oauthService *auth.OAuthService) *gin.Engine {
	checkPanicErr(controllers.RegisterValidators())

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log.StandardLogger()))

	shopping := services.NewShoppingListAggregator(db)
	summarizer := services.NewWeeklyNutritionSummarizer(db)

	controllers.RegisterRoutes(router, controllers.Handlers{
		Auth:        controllers.NewAuthController(services.NewUserService(db), conf.JWTSecret),
		Clients:     controllers.NewClientController(services.NewClientService(db)),
		Recipes:     controllers.NewRecipeController(services.NewRecipeService(db, nutritionLookup(conf))),
		Ingredients: controllers.NewIngredientController(services.NewIngredientService(db)),
		MealPlans:   controllers.NewMealPlanController(services.NewMealPlanService(db, shopping, summarizer)),
		OAuthToken:  oauthService.TokenHandler(),
	}, []byte(conf.JWTSecret))

	router.GET("/health", healthCheckHandler)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

// purgeExpiredTokens removes expired rows from the issued-token table until ctx is done.
func purgeExpiredTokens(ctx context.Context, store *auth.GormTokenStore) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := store.RemoveExpired(ctx, now)
			if err != nil {
				log.WithError(err).Warn("Purging expired tokens failed")
				continue
			}
			log.WithField("removed", removed).Debug("Purged expired tokens")
		}
	}
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-mealplanner-api",
	})
}
