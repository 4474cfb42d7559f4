package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/apperrors"
	"github.com/nutrilog/nutrilog/internal/database"
	"github.com/nutrilog/nutrilog/internal/nutrition"
	"github.com/nutrilog/nutrilog/internal/timeutil"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
	maxGoalNameLen      = 100
)

// GoalData is a goal as returned to callers, with the derived calorie goal.
type GoalData struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	StartAt     int64   `json:"startAt"`
	EndAt       *int64  `json:"endAt"`
	ProteinGoal int     `json:"proteinGoal"`
	CarbsGoal   int     `json:"carbsGoal"`
	FatGoal     int     `json:"fatGoal"`
	CalorieGoal float64 `json:"calorieGoal"`
}

// CreateGoalInput holds the fields for a new goal period.
type CreateGoalInput struct {
	Name              string
	StartAt           int64
	EndAt             *int64
	ProteinGoal       int
	CarbsGoal         int
	FatGoal           int
	ClosePreviousGoal bool
}

// UpdateGoalInput holds a partial update; nil fields are left unchanged.
type UpdateGoalInput struct {
	Name        *string
	StartAt     *int64
	EndAt       *int64
	ProteinGoal *int
	CarbsGoal   *int
	FatGoal     *int
}

type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

// withCalorieGoal is the single place goal-shaped output picks up its
// derived calorie figure.
func withCalorieGoal(g *database.Goal) *GoalData {
	return &GoalData{
		ID:          g.ID,
		Name:        g.Name,
		StartAt:     g.StartAt,
		EndAt:       g.EndAt,
		ProteinGoal: g.ProteinGoal,
		CarbsGoal:   g.CarbsGoal,
		FatGoal:     g.FatGoal,
		CalorieGoal: nutrition.Calories(nutrition.Macros{
			Protein: float64(g.ProteinGoal),
			Carbs:   float64(g.CarbsGoal),
			Fat:     float64(g.FatGoal),
		}),
	}
}

// GetCurrentGoal returns the goal whose [startAt, endAt) interval contains
// the start of at's calendar day in the given timezone, or nil when no goal
// covers that instant.
func (s *GoalService) GetCurrentGoal(ctx context.Context, userID string, at time.Time, timezone string) (*GoalData, error) {
	loc, err := timeutil.Location(timezone)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown timezone").WithContext("timezone", timezone)
	}
	dayStart := timeutil.StartOfDay(at, loc).UnixMilli()

	var goal database.Goal
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND start_at <= ? AND (end_at IS NULL OR end_at > ?)", userID, dayStart, dayStart).
		Order("start_at DESC").
		First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return withCalorieGoal(&goal), nil
}

// GetGoalHistory returns the user's goals ordered by startAt descending.
func (s *GoalService) GetGoalHistory(ctx context.Context, userID string, limit, offset int) ([]GoalData, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit < 0 || limit > maxHistoryLimit {
		return nil, apperrors.NewValidationError("limit must be between 1 and 100")
	}
	if offset < 0 {
		return nil, apperrors.NewValidationError("offset must be non-negative")
	}

	var goals []database.Goal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&goals).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	results := make([]GoalData, 0, len(goals))
	for i := range goals {
		results = append(results, *withCalorieGoal(&goals[i]))
	}
	return results, nil
}

// CreateGoal validates and inserts a new goal period. The optional auto-close
// of the currently open goal, the overlap check against the post-close state,
// and the insert run in one transaction so a rejection leaves the store
// unchanged.
func (s *GoalService) CreateGoal(ctx context.Context, userID string, in CreateGoalInput) (*GoalData, error) {
	if err := validateGoalFields(in.Name, in.StartAt, in.EndAt, in.ProteinGoal, in.CarbsGoal, in.FatGoal); err != nil {
		return nil, err
	}

	created := database.Goal{
		UserID:      userID,
		Name:        in.Name,
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
		ProteinGoal: in.ProteinGoal,
		CarbsGoal:   in.CarbsGoal,
		FatGoal:     in.FatGoal,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ClosePreviousGoal {
			if err := closeOpenGoal(tx, userID, in.StartAt); err != nil {
				return err
			}
		}

		overlap := tx.Model(&database.Goal{}).Where("user_id = ?", userID)
		if in.EndAt != nil {
			overlap = overlap.Where("start_at < ?", *in.EndAt)
		}
		overlap = overlap.Where("(end_at IS NULL OR end_at > ?)", in.StartAt)

		var count int64
		if err := overlap.Count(&count).Error; err != nil {
			return apperrors.NewDatabaseError(err)
		}
		if count > 0 {
			return apperrors.ErrGoalOverlap
		}

		if err := tx.Create(&created).Error; err != nil {
			if isOverlapConstraintViolation(err) {
				return apperrors.ErrGoalOverlap
			}
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withCalorieGoal(&created), nil
}

// closeOpenGoal sets the open goal's endAt to startAt. An open goal starting
// at or after startAt cannot be closed into a valid interval.
func closeOpenGoal(tx *gorm.DB, userID string, startAt int64) error {
	var open database.Goal
	err := tx.Where("user_id = ? AND end_at IS NULL", userID).First(&open).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if open.StartAt >= startAt {
		return apperrors.NewConflictError("open goal starts after the new goal").
			WithContext("open_goal_id", open.ID)
	}
	if err := tx.Model(&database.Goal{}).Where("id = ?", open.ID).Update("end_at", startAt).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// UpdateGoal applies a partial update to an owned goal. The effective
// interval is re-validated but cross-goal overlap is not re-checked on
// update.
func (s *GoalService) UpdateGoal(ctx context.Context, userID string, id uint, in UpdateGoalInput) (*GoalData, error) {
	var existing database.Goal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrGoalNotFound
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	merged := existing
	updates := map[string]interface{}{}
	if in.Name != nil {
		merged.Name = *in.Name
		updates["name"] = *in.Name
	}
	if in.StartAt != nil {
		merged.StartAt = *in.StartAt
		updates["start_at"] = *in.StartAt
	}
	if in.EndAt != nil {
		merged.EndAt = in.EndAt
		updates["end_at"] = *in.EndAt
	}
	if in.ProteinGoal != nil {
		merged.ProteinGoal = *in.ProteinGoal
		updates["protein_goal"] = *in.ProteinGoal
	}
	if in.CarbsGoal != nil {
		merged.CarbsGoal = *in.CarbsGoal
		updates["carbs_goal"] = *in.CarbsGoal
	}
	if in.FatGoal != nil {
		merged.FatGoal = *in.FatGoal
		updates["fat_goal"] = *in.FatGoal
	}

	if err := validateGoalFields(merged.Name, merged.StartAt, merged.EndAt, merged.ProteinGoal, merged.CarbsGoal, merged.FatGoal); err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		return withCalorieGoal(&existing), nil
	}

	if err := s.db.WithContext(ctx).
		Model(&database.Goal{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return withCalorieGoal(&merged), nil
}

// DeleteGoal hard-deletes an owned goal.
func (s *GoalService) DeleteGoal(ctx context.Context, userID string, id uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&database.Goal{})
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrGoalNotFound
	}
	return nil
}

func validateGoalFields(name string, startAt int64, endAt *int64, proteinGoal, carbsGoal, fatGoal int) error {
	if name == "" {
		return apperrors.NewValidationError("name is required")
	}
	if len(name) > maxGoalNameLen {
		return apperrors.NewValidationError("name must be at most 100 characters")
	}
	if endAt != nil && startAt >= *endAt {
		return apperrors.NewValidationError("startAt must be before endAt")
	}
	if proteinGoal < 0 || carbsGoal < 0 || fatGoal < 0 {
		return apperrors.NewValidationError("macro targets must be non-negative")
	}
	return nil
}

// isOverlapConstraintViolation detects the Postgres exclusion constraint
// guarding goal periods, so concurrent creates that slip past the pre-check
// still surface as a conflict.
func isOverlapConstraintViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "goals_no_overlap")
}
