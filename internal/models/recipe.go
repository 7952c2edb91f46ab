package models

import (
	"fmt"
	"time"
)

// Recipe is a user owned recipe. UserID is set on creation and never changes.
type Recipe struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"not null;index" json:"user_id"`
	Name         string        `gorm:"size:255;not null" json:"name"`
	Difficulty   Difficulty    `gorm:"not null" json:"difficulty"`
	TimeNeeded   time.Duration `json:"time_needed"`
	Public       bool          `gorm:"not null;default:false;index" json:"public"`
	ImageURL     *string       `gorm:"size:500" json:"image_url,omitempty"`
	Instructions string        `gorm:"type:text" json:"instructions"`

	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Nutrition   *NutritionProfile  `gorm:"constraint:OnDelete:CASCADE" json:"nutrition,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerID returns the id of the user that created the recipe.
func (r Recipe) OwnerID() uint { return r.UserID }

// IsPublic reports whether the recipe is visible to everyone.
func (r Recipe) IsPublic() bool { return r.Public }

// NutritionProfile holds the per-recipe nutrition totals. RecipeID is unique so a
// recipe has at most one profile.
type NutritionProfile struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	RecipeID       uint       `gorm:"not null;uniqueIndex" json:"recipe_id"`
	Calories       float64    `json:"calories"`
	CaloriesColour ColourCode `json:"calories_colour"`
	Fat            float64    `json:"fat"`
	FatColour      ColourCode `json:"fat_colour"`
	Carbs          float64    `json:"carbs"`
	CarbsColour    ColourCode `json:"carbs_colour"`
	Protein        float64    `json:"protein"`
	ProteinColour  ColourCode `json:"protein_colour"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Ingredient is a catalogue entry shared by all recipes.
type Ingredient struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null;index" json:"name"`
	Unit      MeasurementUnit `gorm:"size:10;not null" json:"unit"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RecipeIngredient links a recipe to an ingredient with a quantity in the
// ingredient's unit. The nutrition fields are optional snapshots taken when the
// entry was added.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;index" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	Calories     *float64   `json:"calories,omitempty"`
	Fat          *float64   `json:"fat,omitempty"`
	Carbs        *float64   `json:"carbs,omitempty"`
	Protein      *float64   `json:"protein,omitempty"`
}

func (ri RecipeIngredient) String() string {
	return fmt.Sprintf("%g %s of %s", ri.Quantity, ri.Ingredient.Unit, ri.Ingredient.Name)
}

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// RecipeTag is the join row behind Recipe.Tags. The composite primary key keeps
// a tag from being attached to the same recipe twice.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// HumaniseDuration renders a duration the way recipe cards show it,
// e.g. "1 hrs 30 mins", "2 hrs", "45 mins" or "20 secs".
func HumaniseDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Seconds())
	hours, rest := total/3600, total%3600
	minutes, seconds := rest/60, rest%60

	switch {
	case hours > 0 && minutes != 0:
		return fmt.Sprintf("%d hrs %d mins", hours, minutes)
	case hours >= 1:
		return fmt.Sprintf("%d hrs", hours)
	case minutes > 0:
		return fmt.Sprintf("%d mins", minutes)
	default:
		return fmt.Sprintf("%d secs", seconds)
	}
}
