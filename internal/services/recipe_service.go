package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/authz"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/nutrition"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Time buckets accepted by RecipeFilter.TimeBucket.
const (
	TimeUnder30   = "under_30"
	Time30To45    = "30_to_45"
	TimeOver45    = "over_45"
	maxTagNameLen = 100
)

var recipeSortOrders = map[string]string{
	"":             "id ASC",
	"difficulty":   "difficulty ASC, id ASC",
	"-difficulty":  "difficulty DESC, id ASC",
	"time_needed":  "time_needed ASC, id ASC",
	"-time_needed": "time_needed DESC, id ASC",
}

// RecipeFilter narrows ListRecipes. Zero values mean "no filter".
type RecipeFilter struct {
	Query      string
	Difficulty *models.Difficulty
	TagID      *uint
	TimeBucket string
	Sort       string
}

// RecipeInput holds the editable fields of a recipe.
type RecipeInput struct {
	Name         string
	Difficulty   models.Difficulty
	TimeNeeded   time.Duration
	Public       bool
	ImageURL     *string
	Instructions string
}

// IngredientEntryInput adds an ingredient to a recipe.
type IngredientEntryInput struct {
	IngredientID uint
	Quantity     float64
	Calories     *float64
	Fat          *float64
	Carbs        *float64
	Protein      *float64
}

// NutritionInput is the full nutrition profile of a recipe.
type NutritionInput struct {
	Calories       float64
	CaloriesColour models.ColourCode
	Fat            float64
	FatColour      models.ColourCode
	Carbs          float64
	CarbsColour    models.ColourCode
	Protein        float64
	ProteinColour  models.ColourCode
}

type RecipeService interface {
	ListRecipes(ctx context.Context, p authz.Principal, filter RecipeFilter) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, p authz.Principal, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, p authz.Principal, in RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, p authz.Principal, id uint, in RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, p authz.Principal, id uint) error

	AddIngredient(ctx context.Context, p authz.Principal, recipeID uint, in IngredientEntryInput) (*models.RecipeIngredient, error)
	RemoveIngredient(ctx context.Context, p authz.Principal, recipeID, entryID uint) error

	AddTag(ctx context.Context, p authz.Principal, recipeID uint, name string) (*models.Tag, error)
	RemoveTag(ctx context.Context, p authz.Principal, recipeID, tagID uint) error

	SetNutrition(ctx context.Context, p authz.Principal, recipeID uint, in NutritionInput) (*models.NutritionProfile, error)
	// NutritionProfile reports the stored profile and whether the recipe has one.
	NutritionProfile(ctx context.Context, p authz.Principal, recipeID uint) (models.NutritionProfile, bool, error)
	// LookupNutrition asks the external nutrition API about the recipe's
	// ingredients. External failures are reported as ok == false, never as errors.
	LookupNutrition(ctx context.Context, p authz.Principal, recipeID uint) (nutrition.Facts, bool, error)
}

type recipeService struct {
	db     *gorm.DB
	lookup nutrition.Lookuper
}

func NewRecipeService(db *gorm.DB, lookup nutrition.Lookuper) RecipeService {
	if lookup == nil {
		lookup = nutrition.Disabled{}
	}
	return &recipeService{db: db, lookup: lookup}
}

func (s *recipeService) ListRecipes(ctx context.Context, p authz.Principal, filter RecipeFilter) ([]models.Recipe, error) {
	order, ok := recipeSortOrders[filter.Sort]
	if !ok {
		return nil, NewValidationError("sort", "must be one of difficulty, -difficulty, time_needed, -time_needed")
	}

	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if p.Anonymous() {
		q = q.Where("public = ?", true)
	} else if !p.IsAdmin() {
		q = q.Where("(public = ? OR user_id = ?)", true, p.UserID)
	}

	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(instructions) LIKE ?)", like, like)
	}
	if filter.Difficulty != nil {
		if !filter.Difficulty.Valid() {
			return nil, NewValidationError("difficulty", "must be 1, 2 or 3")
		}
		q = q.Where("difficulty = ?", *filter.Difficulty)
	}
	if filter.TagID != nil {
		q = q.Where("id IN (?)", s.db.WithContext(ctx).Model(&models.RecipeTag{}).Select("recipe_id").Where("tag_id = ?", *filter.TagID))
	}

	switch filter.TimeBucket {
	case "":
	case TimeUnder30:
		q = q.Where("time_needed < ?", int64(30*time.Minute))
	case Time30To45:
		q = q.Where("time_needed >= ? AND time_needed < ?", int64(30*time.Minute), int64(45*time.Minute))
	case TimeOver45:
		q = q.Where("time_needed >= ?", int64(45*time.Minute))
	default:
		return nil, NewValidationError("time", "must be one of under_30, 30_to_45, over_45")
	}

	var recipes []models.Recipe
	if err := q.Preload("Tags").Order(order).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	return recipes, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, p authz.Principal, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Preload("Nutrition").
		First(&recipe, id).Error
	if err != nil {
		return nil, notFound(err, "recipe")
	}
	if err := authz.Check(p, recipe, authz.Read); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, p authz.Principal, in RecipeInput) (*models.Recipe, error) {
	if p.Anonymous() {
		return nil, ErrForbidden
	}
	if err := validateRecipeInput(&in); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		UserID:       p.UserID,
		Name:         in.Name,
		Difficulty:   in.Difficulty,
		TimeNeeded:   in.TimeNeeded,
		Public:       in.Public,
		ImageURL:     in.ImageURL,
		Instructions: in.Instructions,
	}
	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	log.WithFields(log.Fields{"recipe_id": recipe.ID, "user_id": p.UserID}).Info("Recipe created")
	return &recipe, nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, p authz.Principal, id uint, in RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(&in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	recipe, err := s.authorizeRecipe(db, p, id, authz.Modify)
	if err != nil {
		return nil, err
	}

	updates := models.Recipe{
		Name:         in.Name,
		Difficulty:   in.Difficulty,
		TimeNeeded:   in.TimeNeeded,
		Public:       in.Public,
		ImageURL:     in.ImageURL,
		Instructions: in.Instructions,
	}
	// UserID is not selected so the owner never changes.
	err = db.Model(&recipe).
		Select("Name", "Difficulty", "TimeNeeded", "Public", "ImageURL", "Instructions").
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("updating recipe: %w", err)
	}
	return s.GetRecipe(ctx, p, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, p authz.Principal, id uint) error {
	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, id, authz.Modify); err != nil {
		return err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.MealPlanItem{}, &models.RecipeIngredient{}, &models.RecipeTag{}, &models.NutritionProfile{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return fmt.Errorf("deleting %T rows: %w", dependent, err)
			}
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("deleting recipe %d: %w", id, err)
	}

	log.WithFields(log.Fields{"recipe_id": id, "user_id": p.UserID}).Info("Recipe deleted")
	return nil
}

func (s *recipeService) AddIngredient(ctx context.Context, p authz.Principal, recipeID uint, in IngredientEntryInput) (*models.RecipeIngredient, error) {
	if in.Quantity <= 0 || math.IsInf(in.Quantity, 0) || math.IsNaN(in.Quantity) {
		return nil, NewValidationError("quantity", "must be greater than zero")
	}
	for field, v := range map[string]*float64{"calories": in.Calories, "fat": in.Fat, "carbs": in.Carbs, "protein": in.Protein} {
		if v != nil && *v < 0 {
			return nil, NewValidationError(field, "must not be negative")
		}
	}

	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, recipeID, authz.Modify); err != nil {
		return nil, err
	}

	var ingredient models.Ingredient
	if err := db.First(&ingredient, in.IngredientID).Error; err != nil {
		return nil, notFound(err, "ingredient")
	}

	entry := models.RecipeIngredient{
		RecipeID:     recipeID,
		IngredientID: ingredient.ID,
		Quantity:     in.Quantity,
		Calories:     in.Calories,
		Fat:          in.Fat,
		Carbs:        in.Carbs,
		Protein:      in.Protein,
	}
	if err := db.Omit("Ingredient").Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("adding ingredient to recipe: %w", err)
	}
	entry.Ingredient = ingredient
	return &entry, nil
}

func (s *recipeService) RemoveIngredient(ctx context.Context, p authz.Principal, recipeID, entryID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, recipeID, authz.Modify); err != nil {
		return err
	}

	result := db.Where("id = ? AND recipe_id = ?", entryID, recipeID).Delete(&models.RecipeIngredient{})
	if result.Error != nil {
		return fmt.Errorf("removing recipe ingredient: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recipe ingredient: %w", ErrNotFound)
	}
	return nil
}

func (s *recipeService) AddTag(ctx context.Context, p authz.Principal, recipeID uint, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if len(name) > maxTagNameLen {
		return nil, NewValidationError("name", fmt.Sprintf("must be at most %d characters", maxTagNameLen))
	}

	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, recipeID, authz.Modify); err != nil {
		return nil, err
	}

	var tag models.Tag
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return fmt.Errorf("getting or creating tag: %w", err)
		}
		// Attaching a tag twice is a no-op.
		link := models.RecipeTag{RecipeID: recipeID, TagID: tag.ID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
	if err != nil {
		return nil, fmt.Errorf("tagging recipe %d: %w", recipeID, err)
	}
	return &tag, nil
}

func (s *recipeService) RemoveTag(ctx context.Context, p authz.Principal, recipeID, tagID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, recipeID, authz.Modify); err != nil {
		return err
	}

	result := db.Where("recipe_id = ? AND tag_id = ?", recipeID, tagID).Delete(&models.RecipeTag{})
	if result.Error != nil {
		return fmt.Errorf("removing recipe tag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recipe tag: %w", ErrNotFound)
	}
	return nil
}

func (s *recipeService) SetNutrition(ctx context.Context, p authz.Principal, recipeID uint, in NutritionInput) (*models.NutritionProfile, error) {
	if err := validateNutritionInput(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, recipeID, authz.Modify); err != nil {
		return nil, err
	}

	profile := models.NutritionProfile{
		RecipeID:       recipeID,
		Calories:       in.Calories,
		CaloriesColour: in.CaloriesColour,
		Fat:            in.Fat,
		FatColour:      in.FatColour,
		Carbs:          in.Carbs,
		CarbsColour:    in.CarbsColour,
		Protein:        in.Protein,
		ProteinColour:  in.ProteinColour,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "recipe_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"calories", "calories_colour", "fat", "fat_colour",
			"carbs", "carbs_colour", "protein", "protein_colour", "updated_at",
		}),
	}).Create(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("saving nutrition profile: %w", err)
	}

	stored, ok, err := findNutritionProfile(db, recipeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("nutrition profile for recipe %d vanished after upsert", recipeID)
	}
	return &stored, nil
}

func (s *recipeService) NutritionProfile(ctx context.Context, p authz.Principal, recipeID uint) (models.NutritionProfile, bool, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, recipeID, authz.Read); err != nil {
		return models.NutritionProfile{}, false, err
	}
	return findNutritionProfile(db, recipeID)
}

func (s *recipeService) LookupNutrition(ctx context.Context, p authz.Principal, recipeID uint) (nutrition.Facts, bool, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.authorizeRecipe(db, p, recipeID, authz.Read); err != nil {
		return nutrition.Facts{}, false, err
	}

	var entries []models.RecipeIngredient
	if err := db.Preload("Ingredient").Where("recipe_id = ?", recipeID).Order("id").Find(&entries).Error; err != nil {
		return nutrition.Facts{}, false, fmt.Errorf("loading recipe ingredients: %w", err)
	}
	if len(entries) == 0 {
		return nutrition.Facts{}, false, nil
	}

	facts, ok := s.lookup.Lookup(ctx, nutrition.BuildQuery(entries))
	return facts, ok, nil
}

// authorizeRecipe loads the bare recipe row and checks the principal may perform action on it.
func (s *recipeService) authorizeRecipe(db *gorm.DB, p authz.Principal, id uint, action authz.Action) (models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		return models.Recipe{}, notFound(err, "recipe")
	}
	if err := authz.Check(p, recipe, action); err != nil {
		log.WithFields(log.Fields{
			"recipe_id": id,
			"user_id":   p.UserID,
			"action":    action.String(),
		}).Debug("Recipe access denied")
		return models.Recipe{}, err
	}
	return recipe, nil
}

func findNutritionProfile(db *gorm.DB, recipeID uint) (models.NutritionProfile, bool, error) {
	var profiles []models.NutritionProfile
	if err := db.Where("recipe_id = ?", recipeID).Limit(1).Find(&profiles).Error; err != nil {
		return models.NutritionProfile{}, false, fmt.Errorf("loading nutrition profile: %w", err)
	}
	if len(profiles) == 0 {
		return models.NutritionProfile{}, false, nil
	}
	return profiles[0], true, nil
}

func validateRecipeInput(in *RecipeInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if len(in.Name) > 255 {
		return NewValidationError("name", "must be at most 255 characters")
	}
	if !in.Difficulty.Valid() {
		return NewValidationError("difficulty", "must be 1, 2 or 3")
	}
	if in.TimeNeeded < 0 {
		return NewValidationError("time_needed", "must not be negative")
	}
	if in.ImageURL != nil {
		trimmed := strings.TrimSpace(*in.ImageURL)
		if trimmed == "" {
			in.ImageURL = nil
			return nil
		}
		u, err := url.ParseRequestURI(trimmed)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError("image_url", "must be an absolute http(s) URL")
		}
		in.ImageURL = &trimmed
	}
	return nil
}

func validateNutritionInput(in NutritionInput) error {
	values := []struct {
		field  string
		value  float64
		colour models.ColourCode
	}{
		{"calories", in.Calories, in.CaloriesColour},
		{"fat", in.Fat, in.FatColour},
		{"carbs", in.Carbs, in.CarbsColour},
		{"protein", in.Protein, in.ProteinColour},
	}
	for _, v := range values {
		if v.value < 0 || math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return NewValidationError(v.field, "must be a non-negative number")
		}
		if !v.colour.Valid() {
			return NewValidationError(v.field+"_colour", "must be between 0 and 3")
		}
	}
	return nil
}
