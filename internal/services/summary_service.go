package services

import (
	"context"
	"time"

	"github.com/nutrilog/nutrilog/internal/apperrors"
	"github.com/nutrilog/nutrilog/internal/nutrition"
	"github.com/nutrilog/nutrilog/internal/timeutil"
	"gorm.io/gorm"
)

// Summary is a macro/calorie total for one time window.
type Summary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DailyTotal is one calendar day of a weekly summary.
type DailyTotal struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// logRow is one food-log row joined to its food and optional serving unit.
type logRow struct {
	Protein         float64
	Carbs           float64
	Fat             float64
	ServingSize     int
	Quantity        float64
	CreatedAt       int64
	GramsEquivalent *int
}

type SummaryService struct {
	db *gorm.DB
}

func NewSummaryService(db *gorm.DB) *SummaryService {
	return &SummaryService{db: db}
}

// DailySummary sums the user's consumption for date's calendar day in the
// given timezone. A day with no logs yields an all-zero summary.
func (s *SummaryService) DailySummary(ctx context.Context, userID string, date time.Time, timezone string) (*Summary, error) {
	loc, err := timeutil.Location(timezone)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown timezone").WithContext("timezone", timezone)
	}
	dayStart := timeutil.StartOfDay(date, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.fetchLogRows(ctx, userID, dayStart.UnixMilli(), dayEnd.UnixMilli())
	if err != nil {
		return nil, err
	}

	var totals nutrition.Macros
	for _, r := range rows {
		m := nutrition.Multiplier(r.Quantity, r.ServingSize, r.GramsEquivalent)
		totals.Protein += r.Protein * m
		totals.Carbs += r.Carbs * m
		totals.Fat += r.Fat * m
	}

	return &Summary{
		Calories: nutrition.Calories(totals),
		Protein:  totals.Protein,
		Carbs:    totals.Carbs,
		Fat:      totals.Fat,
	}, nil
}

// WeeklySummary buckets the user's consumption by calendar day across the 7
// days starting at weekStartDate's day in the given timezone. Every day
// appears in the output, zero-valued when nothing was logged, in
// chronological order.
func (s *SummaryService) WeeklySummary(ctx context.Context, userID string, weekStartDate time.Time, timezone string) ([]DailyTotal, error) {
	loc, err := timeutil.Location(timezone)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown timezone").WithContext("timezone", timezone)
	}
	weekStart := timeutil.StartOfDay(weekStartDate, loc)
	weekEnd := weekStart.AddDate(0, 0, 7)

	dates := make([]string, 0, 7)
	buckets := make(map[string]*nutrition.Macros, 7)
	for i := 0; i < 7; i++ {
		date := timeutil.ISODate(weekStart.AddDate(0, 0, i), loc)
		dates = append(dates, date)
		buckets[date] = &nutrition.Macros{}
	}

	rows, err := s.fetchLogRows(ctx, userID, weekStart.UnixMilli(), weekEnd.UnixMilli())
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		date := timeutil.ISODate(time.UnixMilli(r.CreatedAt), loc)
		bucket, ok := buckets[date]
		if !ok {
			continue
		}
		m := nutrition.Multiplier(r.Quantity, r.ServingSize, r.GramsEquivalent)
		bucket.Protein += r.Protein * m
		bucket.Carbs += r.Carbs * m
		bucket.Fat += r.Fat * m
	}

	totals := make([]DailyTotal, 0, 7)
	for _, date := range dates {
		bucket := buckets[date]
		totals = append(totals, DailyTotal{
			Date:     date,
			Calories: nutrition.Calories(*bucket),
			Protein:  bucket.Protein,
			Carbs:    bucket.Carbs,
			Fat:      bucket.Fat,
		})
	}
	return totals, nil
}

func (s *SummaryService) fetchLogRows(ctx context.Context, userID string, from, to int64) ([]logRow, error) {
	var rows []logRow
	err := s.db.WithContext(ctx).
		Table("food_logs").
		Select("foods.protein, foods.carbs, foods.fat, foods.serving_size, food_logs.quantity, food_logs.created_at, serving_units.grams_equivalent").
		Joins("INNER JOIN foods ON foods.id = food_logs.food_id").
		Joins("LEFT JOIN serving_units ON serving_units.id = food_logs.serving_unit_id").
		Where("food_logs.user_id = ? AND food_logs.created_at >= ? AND food_logs.created_at < ?", userID, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return rows, nil
}
