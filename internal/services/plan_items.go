package services

import (
	"fmt"
	"sort"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"gorm.io/gorm"
)

// loadPlanItems returns every item of the meal plan, or ErrNotFound when the plan
// does not exist.
func loadPlanItems(db *gorm.DB, mealPlanID uint) ([]models.MealPlanItem, error) {
	var plan models.MealPlan
	if err := db.Select("id").First(&plan, mealPlanID).Error; err != nil {
		return nil, notFound(err, "meal plan")
	}

	var items []models.MealPlanItem
	if err := db.Where("meal_plan_id = ?", mealPlanID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("loading meal plan items: %w", err)
	}
	return items, nil
}

// profileIndex maps recipe ids to their nutrition profile.
type profileIndex map[uint]models.NutritionProfile

// lookup reports the profile of a recipe and whether it has one.
func (idx profileIndex) lookup(recipeID uint) (models.NutritionProfile, bool) {
	p, ok := idx[recipeID]
	return p, ok
}

func loadNutritionProfiles(db *gorm.DB, recipeIDs []uint) (profileIndex, error) {
	idx := make(profileIndex, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return idx, nil
	}

	var profiles []models.NutritionProfile
	if err := db.Where("recipe_id IN ?", recipeIDs).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("loading nutrition profiles: %w", err)
	}
	for _, p := range profiles {
		idx[p.RecipeID] = p
	}
	return idx, nil
}

func sortedIDs(counts map[uint]int) []uint {
	ids := make([]uint, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
