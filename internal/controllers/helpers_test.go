package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/nutrition"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-jwt-secret-key-32-characters"

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestAPI(t *testing.T, lookup nutrition.Lookuper) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	db := setupTestDB(t)
	router := gin.New()
	RegisterRoutes(router, Handlers{
		Auth:        NewAuthController(services.NewUserService(db), testJWTSecret),
		Clients:     NewClientController(services.NewClientService(db)),
		Recipes:     NewRecipeController(services.NewRecipeService(db, lookup)),
		Ingredients: NewIngredientController(services.NewIngredientService(db)),
		MealPlans: NewMealPlanController(services.NewMealPlanService(db,
			services.NewShoppingListAggregator(db), services.NewWeeklyNutritionSummarizer(db))),
	}, []byte(testJWTSecret))

	return &testAPI{t: t, db: db, router: router}
}

func (a *testAPI) createUser(email, role string) models.User {
	a.t.Helper()
	user := models.User{Email: email, Name: email, Password: "not-used", Role: role}
	require.NoError(a.t, a.db.Create(&user).Error)
	return user
}

func (a *testAPI) token(u models.User) string {
	a.t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  strconv.FormatUint(uint64(u.ID), 10),
		"role": u.Role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(a.t, err)
	return token
}

// do sends body as JSON. token may be empty for anonymous requests.
func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *testAPI) seedRecipe(owner models.User, name string, public bool) models.Recipe {
	a.t.Helper()
	recipe := models.Recipe{UserID: owner.ID, Name: name, Difficulty: models.DifficultyEasy, TimeNeeded: 90 * time.Minute, Public: public}
	require.NoError(a.t, a.db.Create(&recipe).Error)
	return recipe
}

func (a *testAPI) seedIngredient(name string, unit models.MeasurementUnit) models.Ingredient {
	a.t.Helper()
	ingredient := models.Ingredient{Name: name, Unit: unit}
	require.NoError(a.t, a.db.Create(&ingredient).Error)
	return ingredient
}

func (a *testAPI) seedEntry(recipe models.Recipe, ingredient models.Ingredient, quantity float64) {
	a.t.Helper()
	entry := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ingredient.ID, Quantity: quantity}
	require.NoError(a.t, a.db.Omit("Ingredient").Create(&entry).Error)
}

func (a *testAPI) seedProfile(recipe models.Recipe, calories, fat, carbs, protein float64) {
	a.t.Helper()
	profile := models.NutritionProfile{RecipeID: recipe.ID, Calories: calories, Fat: fat, Carbs: carbs, Protein: protein}
	require.NoError(a.t, a.db.Create(&profile).Error)
}

func (a *testAPI) seedPlan(owner models.User, name string) models.MealPlan {
	a.t.Helper()
	plan := models.MealPlan{UserID: owner.ID, Name: name}
	require.NoError(a.t, a.db.Create(&plan).Error)
	return plan
}

func (a *testAPI) schedule(plan models.MealPlan, recipe models.Recipe, day models.Weekday) models.MealPlanItem {
	a.t.Helper()
	item := models.MealPlanItem{MealPlanID: plan.ID, RecipeID: recipe.ID, Weekday: day}
	require.NoError(a.t, a.db.Select("MealPlanID", "RecipeID", "Weekday").Create(&item).Error)
	return item
}

func (a *testAPI) weekdayOf(itemID uint) models.Weekday {
	a.t.Helper()
	var item models.MealPlanItem
	require.NoError(a.t, a.db.First(&item, itemID).Error)
	return item.Weekday
}
