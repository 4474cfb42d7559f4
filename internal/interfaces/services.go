package interfaces

import (
	"context"
	"time"

	"github.com/nutrilog/nutrilog/internal/database"
	"github.com/nutrilog/nutrilog/internal/services"
)

// GoalServiceInterface defines the contract for goal-period operations
type GoalServiceInterface interface {
	GetCurrentGoal(ctx context.Context, userID string, at time.Time, timezone string) (*services.GoalData, error)
	GetGoalHistory(ctx context.Context, userID string, limit, offset int) ([]services.GoalData, error)
	CreateGoal(ctx context.Context, userID string, in services.CreateGoalInput) (*services.GoalData, error)
	UpdateGoal(ctx context.Context, userID string, id uint, in services.UpdateGoalInput) (*services.GoalData, error)
	DeleteGoal(ctx context.Context, userID string, id uint) error
}

// SummaryServiceInterface defines the contract for aggregation operations
type SummaryServiceInterface interface {
	DailySummary(ctx context.Context, userID string, date time.Time, timezone string) (*services.Summary, error)
	WeeklySummary(ctx context.Context, userID string, weekStartDate time.Time, timezone string) ([]services.DailyTotal, error)
}

// FoodServiceInterface defines the contract for food and food-log writes
type FoodServiceInterface interface {
	CreateFood(ctx context.Context, userID string, in services.CreateFoodInput) (*database.Food, error)
	GetFoodByBarcode(ctx context.Context, barcode string) (*database.Food, error)
	AddServingUnit(ctx context.Context, userID string, foodID uint, name string, gramsEquivalent int) (*database.ServingUnit, error)
	LogFood(ctx context.Context, userID string, foodID uint, servingUnitID *uint, quantity float64) (*database.FoodLog, error)
}
