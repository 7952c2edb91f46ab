package models

import "time"

// MealPlan is a named weekly plan owned by a user.
type MealPlan struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Items     []MealPlanItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (p MealPlan) OwnerID() uint { return p.UserID }

// IsPublic is always false, meal plans are private to their owner.
func (p MealPlan) IsPublic() bool { return false }

// MealPlanItem schedules a recipe on a weekday. The same recipe may be scheduled
// several times, even on the same day.
type MealPlanItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	MealPlanID uint    `gorm:"not null;index" json:"meal_plan_id"`
	RecipeID   uint    `gorm:"not null;index" json:"recipe_id"`
	Recipe     Recipe  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Weekday    Weekday `gorm:"not null;default:0" json:"weekday"`
}
