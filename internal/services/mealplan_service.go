package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/authz"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WeekdayUpdate moves one meal plan item to another weekday.
type WeekdayUpdate struct {
	ItemID  uint
	Weekday models.Weekday
}

// WeekdayUpdateResult counts the rows written and the ids that did not belong
// to the plan.
type WeekdayUpdateResult struct {
	Updated int
	Skipped int
}

// PlanEntry is a meal plan item joined with its recipe name.
type PlanEntry struct {
	ItemID     uint           `json:"id"`
	RecipeID   uint           `json:"recipe_id"`
	RecipeName string         `json:"recipe_name"`
	Weekday    models.Weekday `json:"weekday"`
	Day        string         `json:"day"`
}

// MealPlanDetail is everything the meal plan page shows.
type MealPlanDetail struct {
	Plan         models.MealPlan
	Entries      []PlanEntry
	ShoppingList []ShoppingListItem
	Nutrition    WeeklyNutrition
}

type MealPlanService interface {
	ListMealPlans(ctx context.Context, p authz.Principal) ([]models.MealPlan, error)
	CreateMealPlan(ctx context.Context, p authz.Principal, name string) (*models.MealPlan, error)
	GetMealPlan(ctx context.Context, p authz.Principal, id uint) (*models.MealPlan, error)
	RenameMealPlan(ctx context.Context, p authz.Principal, id uint, name string) (*models.MealPlan, error)
	DeleteMealPlan(ctx context.Context, p authz.Principal, id uint) error

	AddRecipe(ctx context.Context, p authz.Principal, planID, recipeID uint, weekday models.Weekday) (*models.MealPlanItem, error)
	RemoveItem(ctx context.Context, p authz.Principal, planID, itemID uint) error
	// UpdateWeekdays checks access to the plan, validates every weekday before
	// writing anything, then updates row by row. Ids outside the plan are skipped.
	UpdateWeekdays(ctx context.Context, p authz.Principal, planID uint, updates []WeekdayUpdate) (WeekdayUpdateResult, error)

	ShoppingList(ctx context.Context, p authz.Principal, planID uint) ([]ShoppingListItem, error)
	WeeklyNutrition(ctx context.Context, p authz.Principal, planID uint) (WeeklyNutrition, error)
	Detail(ctx context.Context, p authz.Principal, planID uint) (*MealPlanDetail, error)
}

type mealPlanService struct {
	db         *gorm.DB
	shopping   ShoppingListAggregator
	summarizer WeeklyNutritionSummarizer
}

func NewMealPlanService(db *gorm.DB, shopping ShoppingListAggregator, summarizer WeeklyNutritionSummarizer) MealPlanService {
	return &mealPlanService{db: db, shopping: shopping, summarizer: summarizer}
}

func (s *mealPlanService) ListMealPlans(ctx context.Context, p authz.Principal) ([]models.MealPlan, error) {
	if p.Anonymous() {
		return nil, ErrForbidden
	}
	var plans []models.MealPlan
	if err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).Order("id").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("listing meal plans: %w", err)
	}
	return plans, nil
}

func (s *mealPlanService) CreateMealPlan(ctx context.Context, p authz.Principal, name string) (*models.MealPlan, error) {
	if p.Anonymous() {
		return nil, ErrForbidden
	}
	name, err := validatePlanName(name)
	if err != nil {
		return nil, err
	}

	plan := models.MealPlan{UserID: p.UserID, Name: name}
	if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, fmt.Errorf("creating meal plan: %w", err)
	}
	log.WithFields(log.Fields{"meal_plan_id": plan.ID, "user_id": p.UserID}).Info("Meal plan created")
	return &plan, nil
}

func (s *mealPlanService) GetMealPlan(ctx context.Context, p authz.Principal, id uint) (*models.MealPlan, error) {
	plan, err := s.authorizePlan(s.db.WithContext(ctx), p, id, authz.Read)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *mealPlanService) RenameMealPlan(ctx context.Context, p authz.Principal, id uint, name string) (*models.MealPlan, error) {
	name, err := validatePlanName(name)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	plan, err := s.authorizePlan(db, p, id, authz.Modify)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&plan).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("renaming meal plan: %w", err)
	}
	plan.Name = name
	return &plan, nil
}

func (s *mealPlanService) DeleteMealPlan(ctx context.Context, p authz.Principal, id uint) error {
	db := s.db.WithContext(ctx)
	if _, err := s.authorizePlan(db, p, id, authz.Modify); err != nil {
		return err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_plan_id = ?", id).Delete(&models.MealPlanItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MealPlan{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("deleting meal plan %d: %w", id, err)
	}
	log.WithFields(log.Fields{"meal_plan_id": id, "user_id": p.UserID}).Info("Meal plan deleted")
	return nil
}

func (s *mealPlanService) AddRecipe(ctx context.Context, p authz.Principal, planID, recipeID uint, weekday models.Weekday) (*models.MealPlanItem, error) {
	if !weekday.Valid() {
		return nil, NewValidationError("weekday", "must be between 0 and 6")
	}

	db := s.db.WithContext(ctx)
	if _, err := s.authorizePlan(db, p, planID, authz.Modify); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	if err := authz.Check(p, recipe, authz.Read); err != nil {
		return nil, err
	}

	item := models.MealPlanItem{MealPlanID: planID, RecipeID: recipeID, Weekday: weekday}
	// Weekday is selected so Monday (0) is written instead of being treated as unset.
	if err := db.Select("MealPlanID", "RecipeID", "Weekday").Create(&item).Error; err != nil {
		return nil, fmt.Errorf("adding recipe to meal plan: %w", err)
	}
	return &item, nil
}

func (s *mealPlanService) RemoveItem(ctx context.Context, p authz.Principal, planID, itemID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := s.authorizePlan(db, p, planID, authz.Modify); err != nil {
		return err
	}

	result := db.Where("id = ? AND meal_plan_id = ?", itemID, planID).Delete(&models.MealPlanItem{})
	if result.Error != nil {
		return fmt.Errorf("removing meal plan item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("meal plan item: %w", ErrNotFound)
	}
	return nil
}

func (s *mealPlanService) UpdateWeekdays(ctx context.Context, p authz.Principal, planID uint, updates []WeekdayUpdate) (WeekdayUpdateResult, error) {
	var result WeekdayUpdateResult

	db := s.db.WithContext(ctx)
	if _, err := s.authorizePlan(db, p, planID, authz.Modify); err != nil {
		return result, err
	}

	for _, u := range updates {
		if !u.Weekday.Valid() {
			return result, NewValidationError("weekday", fmt.Sprintf("item %d: weekday %d is not between 0 and 6", u.ItemID, int(u.Weekday)))
		}
	}

	// No batch atomicity: rows written before a failure stay written.
	for _, u := range updates {
		res := db.Model(&models.MealPlanItem{}).
			Where("id = ? AND meal_plan_id = ?", u.ItemID, planID).
			Update("weekday", u.Weekday)
		if res.Error != nil {
			return result, fmt.Errorf("updating weekday of item %d: %w", u.ItemID, res.Error)
		}
		if res.RowsAffected == 0 {
			log.WithFields(log.Fields{"meal_plan_id": planID, "item_id": u.ItemID}).Debug("Skipping item outside meal plan")
			result.Skipped++
			continue
		}
		result.Updated++
	}

	log.WithFields(log.Fields{
		"meal_plan_id": planID,
		"updated":      result.Updated,
		"skipped":      result.Skipped,
	}).Info("Meal plan weekdays updated")
	return result, nil
}

func (s *mealPlanService) ShoppingList(ctx context.Context, p authz.Principal, planID uint) ([]ShoppingListItem, error) {
	if _, err := s.authorizePlan(s.db.WithContext(ctx), p, planID, authz.Read); err != nil {
		return nil, err
	}
	return s.shopping.ShoppingList(ctx, planID)
}

func (s *mealPlanService) WeeklyNutrition(ctx context.Context, p authz.Principal, planID uint) (WeeklyNutrition, error) {
	if _, err := s.authorizePlan(s.db.WithContext(ctx), p, planID, authz.Read); err != nil {
		return WeeklyNutrition{}, err
	}
	return s.summarizer.Summarize(ctx, planID)
}

func (s *mealPlanService) Detail(ctx context.Context, p authz.Principal, planID uint) (*MealPlanDetail, error) {
	db := s.db.WithContext(ctx)
	plan, err := s.authorizePlan(db, p, planID, authz.Read)
	if err != nil {
		return nil, err
	}

	var items []models.MealPlanItem
	if err := db.Preload("Recipe").Where("meal_plan_id = ?", planID).Order("weekday, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("loading meal plan items: %w", err)
	}

	entries := make([]PlanEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, PlanEntry{
			ItemID:     item.ID,
			RecipeID:   item.RecipeID,
			RecipeName: item.Recipe.Name,
			Weekday:    item.Weekday,
			Day:        item.Weekday.Label(),
		})
	}

	shopping, err := s.shopping.ShoppingList(ctx, planID)
	if err != nil {
		return nil, err
	}
	week, err := s.summarizer.Summarize(ctx, planID)
	if err != nil {
		return nil, err
	}

	return &MealPlanDetail{
		Plan:         plan,
		Entries:      entries,
		ShoppingList: shopping,
		Nutrition:    week,
	}, nil
}

func (s *mealPlanService) authorizePlan(db *gorm.DB, p authz.Principal, id uint, action authz.Action) (models.MealPlan, error) {
	var plan models.MealPlan
	if err := db.First(&plan, id).Error; err != nil {
		return models.MealPlan{}, notFound(err, "meal plan")
	}
	if err := authz.Check(p, plan, action); err != nil {
		return models.MealPlan{}, err
	}
	return plan, nil
}

func validatePlanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "must not be empty")
	}
	if len(name) > 255 {
		return "", NewValidationError("name", "must be at most 255 characters")
	}
	return name, nil
}
