package services

import (
	"context"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/nutrition"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DayNutrition is the nutrition total of everything scheduled on one weekday.
type DayNutrition struct {
	Weekday models.Weekday `json:"weekday"`
	Day     string         `json:"day"`
	nutrition.Facts
}

// WeeklyNutrition always holds Monday..Sunday in order.
type WeeklyNutrition [models.DaysInWeek]DayNutrition

// Rounded returns a copy with every value rounded to one decimal for display.
func (w WeeklyNutrition) Rounded() WeeklyNutrition {
	for i := range w {
		w[i].Facts = w[i].Facts.Rounded()
	}
	return w
}

// WeeklyNutritionSummarizer computes per-weekday nutrition totals for a meal plan.
type WeeklyNutritionSummarizer interface {
	Summarize(ctx context.Context, mealPlanID uint) (WeeklyNutrition, error)
}

type weeklyNutritionSummarizer struct {
	db *gorm.DB
}

func NewWeeklyNutritionSummarizer(db *gorm.DB) WeeklyNutritionSummarizer {
	return &weeklyNutritionSummarizer{db: db}
}

// EmptyWeek returns the seven labelled days with zero totals.
func EmptyWeek() WeeklyNutrition {
	var week WeeklyNutrition
	for _, day := range models.Weekdays() {
		week[day] = DayNutrition{Weekday: day, Day: day.Label()}
	}
	return week
}

func (s *weeklyNutritionSummarizer) Summarize(ctx context.Context, mealPlanID uint) (WeeklyNutrition, error) {
	week := EmptyWeek()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := loadPlanItems(tx, mealPlanID)
		if err != nil {
			return err
		}

		// multiplicity of each recipe per weekday
		var counts [models.DaysInWeek]map[uint]int
		distinct := make(map[uint]int)
		for _, item := range items {
			if !item.Weekday.Valid() {
				log.WithFields(log.Fields{
					"meal_plan_id": mealPlanID,
					"item_id":      item.ID,
					"weekday":      int(item.Weekday),
				}).Warn("Skipping meal plan item with invalid weekday")
				continue
			}
			if counts[item.Weekday] == nil {
				counts[item.Weekday] = make(map[uint]int)
			}
			counts[item.Weekday][item.RecipeID]++
			distinct[item.RecipeID]++
		}

		profiles, err := loadNutritionProfiles(tx, sortedIDs(distinct))
		if err != nil {
			return err
		}

		for _, day := range models.Weekdays() {
			for _, recipeID := range sortedIDs(counts[day]) {
				profile, ok := profiles.lookup(recipeID)
				if !ok {
					continue
				}
				contribution := nutrition.FromProfile(profile).Scale(float64(counts[day][recipeID]))
				week[day].Facts = week[day].Facts.Add(contribution)
			}
		}
		return nil
	})
	if err != nil {
		return WeeklyNutrition{}, err
	}
	return week, nil
}
