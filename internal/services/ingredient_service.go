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

// IngredientService manages the shared ingredient catalogue and tag listing.
type IngredientService interface {
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, name string, unit models.MeasurementUnit) (*models.Ingredient, error)
	// DeleteIngredient is restricted to admins and removes the ingredient from every recipe.
	DeleteIngredient(ctx context.Context, p authz.Principal, id uint) error
	ListTags(ctx context.Context) ([]models.Tag, error)
}

type ingredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) IngredientService {
	return &ingredientService{db: db}
}

func (s *ingredientService) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err, "ingredient")
	}
	return &ingredient, nil
}

func (s *ingredientService) CreateIngredient(ctx context.Context, name string, unit models.MeasurementUnit) (*models.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if len(name) > 255 {
		return nil, NewValidationError("name", "must be at most 255 characters")
	}
	if !unit.Valid() {
		return nil, NewValidationError("unit", "must be one of g, ml, unit")
	}

	ingredient := models.Ingredient{Name: name, Unit: unit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, fmt.Errorf("creating ingredient: %w", err)
	}
	return &ingredient, nil
}

func (s *ingredientService) DeleteIngredient(ctx context.Context, p authz.Principal, id uint) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}

	db := s.db.WithContext(ctx)
	var ingredient models.Ingredient
	if err := db.First(&ingredient, id).Error; err != nil {
		return notFound(err, "ingredient")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ingredient).Error
	})
	if err != nil {
		return fmt.Errorf("deleting ingredient %d: %w", id, err)
	}

	log.WithFields(log.Fields{"ingredient_id": id, "user_id": p.UserID}).Info("Ingredient deleted")
	return nil
}

func (s *ingredientService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}
