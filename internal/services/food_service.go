package services

import (
	"context"
	"errors"
	"strings"

	"github.com/nutrilog/nutrilog/internal/apperrors"
	"github.com/nutrilog/nutrilog/internal/database"
	"gorm.io/gorm"
)

const maxFoodNameLen = 50

// CreateFoodInput holds the fields for a new user-owned food.
type CreateFoodInput struct {
	Name        string
	ServingSize int
	ServingUnit string
	Protein     float64
	Carbs       float64
	Fat         float64
	Barcode     *string
}

type FoodService struct {
	db *gorm.DB
}

func NewFoodService(db *gorm.DB) *FoodService {
	return &FoodService{db: db}
}

// CreateFood inserts a food owned by the caller.
func (s *FoodService) CreateFood(ctx context.Context, userID string, in CreateFoodInput) (*database.Food, error) {
	if in.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if len(in.Name) > maxFoodNameLen {
		return nil, apperrors.NewValidationError("name must be at most 50 characters")
	}
	if in.ServingSize <= 0 {
		return nil, apperrors.NewValidationError("servingSize must be positive")
	}
	if in.ServingUnit != "g" && in.ServingUnit != "ml" {
		return nil, apperrors.NewValidationError("servingUnit must be g or ml")
	}
	if in.Protein < 0 || in.Carbs < 0 || in.Fat < 0 {
		return nil, apperrors.NewValidationError("macro values must be non-negative")
	}
	if in.Barcode != nil && (*in.Barcode == "" || len(*in.Barcode) > 50) {
		return nil, apperrors.NewValidationError("barcode must be between 1 and 50 characters")
	}

	food := database.Food{
		UserID:      &userID,
		Name:        in.Name,
		ServingSize: in.ServingSize,
		ServingUnit: in.ServingUnit,
		Protein:     in.Protein,
		Carbs:       in.Carbs,
		Fat:         in.Fat,
		Barcode:     in.Barcode,
	}
	if err := s.db.WithContext(ctx).Create(&food).Error; err != nil {
		if isBarcodeUniqueViolation(err) {
			return nil, apperrors.NewConflictError("a food with this barcode already exists")
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &food, nil
}

// GetFoodByBarcode looks up a food by exact barcode.
func (s *FoodService) GetFoodByBarcode(ctx context.Context, barcode string) (*database.Food, error) {
	if barcode == "" {
		return nil, apperrors.NewValidationError("barcode is required")
	}
	var food database.Food
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrFoodNotFound
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &food, nil
}

// AddServingUnit attaches an alternate serving unit to a food visible to the
// caller. Gram-equivalents are validated at write time so the summary read
// path only has to tolerate legacy rows.
func (s *FoodService) AddServingUnit(ctx context.Context, userID string, foodID uint, name string, gramsEquivalent int) (*database.ServingUnit, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if len(name) > maxFoodNameLen {
		return nil, apperrors.NewValidationError("name must be at most 50 characters")
	}
	if gramsEquivalent <= 0 {
		return nil, apperrors.NewValidationError("gramsEquivalent must be positive")
	}

	if _, err := s.visibleFood(ctx, userID, foodID); err != nil {
		return nil, err
	}

	unit := database.ServingUnit{
		FoodID:          foodID,
		Name:            name,
		GramsEquivalent: gramsEquivalent,
	}
	if err := s.db.WithContext(ctx).Create(&unit).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &unit, nil
}

// LogFood appends a consumption record. The quantity is measured in base
// servings, or in units of the referenced serving unit when one is given.
func (s *FoodService) LogFood(ctx context.Context, userID string, foodID uint, servingUnitID *uint, quantity float64) (*database.FoodLog, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive")
	}

	if _, err := s.visibleFood(ctx, userID, foodID); err != nil {
		return nil, err
	}

	if servingUnitID != nil {
		var unit database.ServingUnit
		err := s.db.WithContext(ctx).First(&unit, *servingUnitID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Serving unit not found")
		}
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		if unit.FoodID != foodID {
			return nil, apperrors.NewValidationError("serving unit does not belong to this food")
		}
	}

	log := database.FoodLog{
		UserID:        userID,
		FoodID:        foodID,
		ServingUnitID: servingUnitID,
		Quantity:      quantity,
	}
	if err := s.db.WithContext(ctx).Create(&log).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &log, nil
}

// visibleFood resolves a food that is either global or owned by the caller.
func (s *FoodService) visibleFood(ctx context.Context, userID string, foodID uint) (*database.Food, error) {
	var food database.Food
	err := s.db.WithContext(ctx).
		Where("id = ? AND (user_id IS NULL OR user_id = ?)", foodID, userID).
		First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrFoodNotFound
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &food, nil
}

func isBarcodeUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "barcode") &&
		(strings.Contains(msg, "duplicate") || strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "unique"))
}
