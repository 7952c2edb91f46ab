package nutrition

import (
	"math"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
)

// Facts are the four nutrition values tracked for recipes and meal plans.
type Facts struct {
	Calories float64 `json:"calories"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
}

// Add returns the field-wise sum of f and o.
func (f Facts) Add(o Facts) Facts {
	return Facts{
		Calories: f.Calories + o.Calories,
		Fat:      f.Fat + o.Fat,
		Carbs:    f.Carbs + o.Carbs,
		Protein:  f.Protein + o.Protein,
	}
}

// Scale multiplies every field by n.
func (f Facts) Scale(n float64) Facts {
	return Facts{
		Calories: f.Calories * n,
		Fat:      f.Fat * n,
		Carbs:    f.Carbs * n,
		Protein:  f.Protein * n,
	}
}

// Rounded returns f rounded to one decimal place for display.
func (f Facts) Rounded() Facts {
	return Facts{
		Calories: Round1(f.Calories),
		Fat:      Round1(f.Fat),
		Carbs:    Round1(f.Carbs),
		Protein:  Round1(f.Protein),
	}
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FromProfile extracts the facts stored on a recipe's nutrition profile.
func FromProfile(p models.NutritionProfile) Facts {
	return Facts{Calories: p.Calories, Fat: p.Fat, Carbs: p.Carbs, Protein: p.Protein}
}

// BuildQuery renders recipe ingredients as the natural language query the
// nutrition API understands, e.g. "200 g of Flour; 2 unit of Egg; ".
func BuildQuery(entries []models.RecipeIngredient) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strconv.FormatFloat(e.Quantity, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(string(e.Ingredient.Unit))
		b.WriteString(" of ")
		b.WriteString(e.Ingredient.Name)
		b.WriteString("; ")
	}
	return b.String()
}
