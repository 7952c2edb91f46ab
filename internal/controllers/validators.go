package controllers

import (
	"fmt"
	"sync"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the domain binding tags (weekday, unit, difficulty,
// colour) to gin's validator. It is safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}

		for tag, fn := range map[string]validator.Func{
			"weekday":    validWeekday,
			"unit":       validUnit,
			"difficulty": validDifficulty,
			"colour":     validColour,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("registering %s validator: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

func validWeekday(fl validator.FieldLevel) bool {
	return models.Weekday(fl.Field().Int()).Valid()
}

func validUnit(fl validator.FieldLevel) bool {
	return models.MeasurementUnit(fl.Field().String()).Valid()
}

func validDifficulty(fl validator.FieldLevel) bool {
	return models.Difficulty(fl.Field().Int()).Valid()
}

func validColour(fl validator.FieldLevel) bool {
	return models.ColourCode(fl.Field().Int()).Valid()
}
