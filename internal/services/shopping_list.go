package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"gorm.io/gorm"
)

// ShoppingListItem is the total quantity of one ingredient needed for a meal plan.
type ShoppingListItem struct {
	IngredientID   uint                   `json:"ingredient_id"`
	IngredientName string                 `json:"ingredient_name"`
	Unit           models.MeasurementUnit `json:"unit"`
	TotalQuantity  float64                `json:"total_quantity"`
}

// ShoppingListAggregator sums ingredient quantities over every recipe scheduled
// in a meal plan.
type ShoppingListAggregator interface {
	// ShoppingList returns one line per (ingredient, unit) ordered by ingredient
	// name, then unit, then ingredient id. Names compare byte-wise and case-sensitively,
	// so "Banana" sorts before "apple". A recipe scheduled n times contributes its
	// quantities n times.
	ShoppingList(ctx context.Context, mealPlanID uint) ([]ShoppingListItem, error)
}

type shoppingListAggregator struct {
	db *gorm.DB
}

func NewShoppingListAggregator(db *gorm.DB) ShoppingListAggregator {
	return &shoppingListAggregator{db: db}
}

type shoppingKey struct {
	ingredientID uint
	unit         models.MeasurementUnit
}

func (a *shoppingListAggregator) ShoppingList(ctx context.Context, mealPlanID uint) ([]ShoppingListItem, error) {
	var list []ShoppingListItem
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := loadPlanItems(tx, mealPlanID)
		if err != nil {
			return err
		}

		occurrences := make(map[uint]int)
		for _, item := range items {
			occurrences[item.RecipeID]++
		}
		if len(occurrences) == 0 {
			list = []ShoppingListItem{}
			return nil
		}

		var entries []models.RecipeIngredient
		if err := tx.Preload("Ingredient").
			Where("recipe_id IN ?", sortedIDs(occurrences)).
			Order("id").
			Find(&entries).Error; err != nil {
			return fmt.Errorf("loading recipe ingredients: %w", err)
		}

		list = sumEntries(entries, occurrences)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// sumEntries groups entries by (ingredient, unit), weighting each entry by how
// often its recipe occurs in the plan.
func sumEntries(entries []models.RecipeIngredient, occurrences map[uint]int) []ShoppingListItem {
	totals := make(map[shoppingKey]*ShoppingListItem)
	for _, e := range entries {
		key := shoppingKey{ingredientID: e.IngredientID, unit: e.Ingredient.Unit}
		line, ok := totals[key]
		if !ok {
			line = &ShoppingListItem{
				IngredientID:   e.IngredientID,
				IngredientName: e.Ingredient.Name,
				Unit:           e.Ingredient.Unit,
			}
			totals[key] = line
		}
		line.TotalQuantity += e.Quantity * float64(occurrences[e.RecipeID])
	}

	list := make([]ShoppingListItem, 0, len(totals))
	for _, line := range totals {
		list = append(list, *line)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.IngredientName != b.IngredientName {
			return a.IngredientName < b.IngredientName
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.IngredientID < b.IngredientID
	})
	return list
}
