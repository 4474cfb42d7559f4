package services

import (
	"context"
	"testing"
	"time"

	"github.com/nutrilog/nutrilog/internal/apperrors"
	"github.com/nutrilog/nutrilog/internal/database"
)

const testUser = "user-1"

func countGoals(t *testing.T, svc *GoalService, userID string) int64 {
	t.Helper()
	var count int64
	if err := svc.db.Model(&database.Goal{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count goals: %v", err)
	}
	return count
}

func TestCreateGoalAndGetCurrent(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:        "Cut",
		StartAt:     ms(2024, 1, 1),
		EndAt:       i64ptr(ms(2024, 2, 1)),
		ProteinGoal: 150,
		CarbsGoal:   200,
		FatGoal:     60,
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	// 150*4 + 200*4 + 60*9
	if created.CalorieGoal != 1940 {
		t.Errorf("CalorieGoal = %v, want 1940", created.CalorieGoal)
	}

	goal, err := svc.GetCurrentGoal(ctx, testUser, time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("GetCurrentGoal failed: %v", err)
	}
	if goal == nil || goal.ID != created.ID {
		t.Fatalf("GetCurrentGoal = %+v, want goal %d", goal, created.ID)
	}
}

func TestGetCurrentGoalNoMatch(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:        "Cut",
		StartAt:     ms(2024, 1, 1),
		EndAt:       i64ptr(ms(2024, 2, 1)),
		ProteinGoal: 150,
	}); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	// before the interval
	goal, err := svc.GetCurrentGoal(ctx, testUser, time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("GetCurrentGoal returned error: %v", err)
	}
	if goal != nil {
		t.Errorf("expected no active goal, got %+v", goal)
	}

	// endAt is exclusive: the end day itself is uncovered
	goal, err = svc.GetCurrentGoal(ctx, testUser, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("GetCurrentGoal returned error: %v", err)
	}
	if goal != nil {
		t.Errorf("expected no active goal on exclusive end day, got %+v", goal)
	}

	// other users never see the goal
	goal, err = svc.GetCurrentGoal(ctx, "someone-else", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("GetCurrentGoal returned error: %v", err)
	}
	if goal != nil {
		t.Errorf("expected no goal for other user, got %+v", goal)
	}
}

func TestGetCurrentGoalBadTimezone(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	_, err := svc.GetCurrentGoal(context.Background(), testUser, time.Now(), "Not/AZone")
	assertErrType(t, err, apperrors.ErrorTypeValidation)
}

func TestCreateGoalInvalidInterval(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "Backwards",
		StartAt: ms(2024, 2, 1),
		EndAt:   i64ptr(ms(2024, 1, 1)),
	})
	assertErrType(t, err, apperrors.ErrorTypeValidation)

	if n := countGoals(t, svc, testUser); n != 0 {
		t.Errorf("store changed on validation failure: %d goals", n)
	}
}

func TestCreateGoalValidation(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateGoalInput
	}{
		{"missing name", CreateGoalInput{StartAt: ms(2024, 1, 1)}},
		{"negative protein", CreateGoalInput{Name: "x", StartAt: ms(2024, 1, 1), ProteinGoal: -1}},
		{"negative fat", CreateGoalInput{Name: "x", StartAt: ms(2024, 1, 1), FatGoal: -5}},
		{"start equals end", CreateGoalInput{Name: "x", StartAt: ms(2024, 1, 1), EndAt: i64ptr(ms(2024, 1, 1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGoal(ctx, testUser, tt.in)
			assertErrType(t, err, apperrors.ErrorTypeValidation)
		})
	}
}

func TestCreateGoalOverlapConflict(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "January",
		StartAt: ms(2024, 1, 1),
		EndAt:   i64ptr(ms(2024, 2, 1)),
	}); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	tests := []struct {
		name    string
		startAt int64
		endAt   *int64
	}{
		{"contained", ms(2024, 1, 10), i64ptr(ms(2024, 1, 20))},
		{"straddles end", ms(2024, 1, 15), i64ptr(ms(2024, 3, 1))},
		{"open-ended over existing", ms(2024, 1, 15), nil},
		{"covers existing", ms(2023, 12, 1), i64ptr(ms(2024, 3, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
				Name:    "Overlapping",
				StartAt: tt.startAt,
				EndAt:   tt.endAt,
			})
			assertErrType(t, err, apperrors.ErrorTypeConflict)
		})
	}

	if n := countGoals(t, svc, testUser); n != 1 {
		t.Errorf("store changed on conflict: %d goals", n)
	}
}

func TestCreateGoalAdjacentAllowed(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "January",
		StartAt: ms(2024, 1, 1),
		EndAt:   i64ptr(ms(2024, 2, 1)),
	}); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	// [Feb 1, Mar 1) touches [Jan 1, Feb 1) without overlapping
	if _, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "February",
		StartAt: ms(2024, 2, 1),
		EndAt:   i64ptr(ms(2024, 3, 1)),
	}); err != nil {
		t.Fatalf("adjacent goal rejected: %v", err)
	}
}

func TestCreateGoalClosePrevious(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	open, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "Ongoing",
		StartAt: ms(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	created, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:              "Next",
		StartAt:           ms(2024, 2, 1),
		ClosePreviousGoal: true,
	})
	if err != nil {
		t.Fatalf("CreateGoal with closePreviousGoal failed: %v", err)
	}

	var closed database.Goal
	if err := svc.db.First(&closed, open.ID).Error; err != nil {
		t.Fatalf("failed to reload closed goal: %v", err)
	}
	if closed.EndAt == nil || *closed.EndAt != created.StartAt {
		t.Errorf("closed goal endAt = %v, want %d", closed.EndAt, created.StartAt)
	}
}

func TestCreateGoalClosePreviousStartsAfterNew(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "Ongoing",
		StartAt: ms(2024, 3, 1),
	}); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	// closing [Mar 1, inf) at Feb 1 would produce an empty interval
	_, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:              "Earlier",
		StartAt:           ms(2024, 2, 1),
		ClosePreviousGoal: true,
	})
	assertErrType(t, err, apperrors.ErrorTypeConflict)

	if n := countGoals(t, svc, testUser); n != 1 {
		t.Errorf("store changed on rejected auto-close: %d goals", n)
	}
}

func TestUpdateGoal(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:        "Cut",
		StartAt:     ms(2024, 1, 1),
		EndAt:       i64ptr(ms(2024, 2, 1)),
		ProteinGoal: 150,
		CarbsGoal:   200,
		FatGoal:     60,
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	name := "Bulk"
	protein := 180
	updated, err := svc.UpdateGoal(ctx, testUser, created.ID, UpdateGoalInput{
		Name:        &name,
		ProteinGoal: &protein,
	})
	if err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if updated.Name != "Bulk" || updated.ProteinGoal != 180 {
		t.Errorf("partial update not applied: %+v", updated)
	}
	if updated.CarbsGoal != 200 || updated.FatGoal != 60 {
		t.Errorf("unset fields changed: %+v", updated)
	}
	// 180*4 + 200*4 + 60*9
	if updated.CalorieGoal != 2060 {
		t.Errorf("CalorieGoal = %v, want 2060", updated.CalorieGoal)
	}
}

func TestUpdateGoalNotFound(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "Cut",
		StartAt: ms(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	_, err = svc.UpdateGoal(ctx, testUser, created.ID+1000, UpdateGoalInput{})
	assertErrType(t, err, apperrors.ErrorTypeNotFound)

	// an owned id is not-found for any other caller
	_, err = svc.UpdateGoal(ctx, "someone-else", created.ID, UpdateGoalInput{})
	assertErrType(t, err, apperrors.ErrorTypeNotFound)
}

func TestUpdateGoalInvalidInterval(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "Cut",
		StartAt: ms(2024, 1, 1),
		EndAt:   i64ptr(ms(2024, 2, 1)),
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	// effective start moves past the existing end
	_, err = svc.UpdateGoal(ctx, testUser, created.ID, UpdateGoalInput{
		StartAt: i64ptr(ms(2024, 3, 1)),
	})
	assertErrType(t, err, apperrors.ErrorTypeValidation)
}

func TestUpdateGoalSkipsOverlapCheck(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "January",
		StartAt: ms(2024, 1, 1),
		EndAt:   i64ptr(ms(2024, 2, 1)),
	}); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	feb, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "February",
		StartAt: ms(2024, 2, 1),
		EndAt:   i64ptr(ms(2024, 3, 1)),
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	// moving February's start into January is accepted on the update path
	if _, err := svc.UpdateGoal(ctx, testUser, feb.ID, UpdateGoalInput{
		StartAt: i64ptr(ms(2024, 1, 15)),
	}); err != nil {
		t.Fatalf("UpdateGoal unexpectedly rejected: %v", err)
	}
}

func TestDeleteGoal(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
		Name:    "Cut",
		StartAt: ms(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	err = svc.DeleteGoal(ctx, "someone-else", created.ID)
	assertErrType(t, err, apperrors.ErrorTypeNotFound)

	if err := svc.DeleteGoal(ctx, testUser, created.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	if n := countGoals(t, svc, testUser); n != 0 {
		t.Errorf("goal not deleted: %d goals remain", n)
	}

	err = svc.DeleteGoal(ctx, testUser, created.ID)
	assertErrType(t, err, apperrors.ErrorTypeNotFound)
}

func TestGetGoalHistory(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	starts := []int64{ms(2024, 1, 1), ms(2024, 2, 1), ms(2024, 3, 1)}
	for i, start := range starts {
		end := start + 20*24*60*60*1000
		if _, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{
			Name:    "Goal",
			StartAt: start,
			EndAt:   &end,
		}); err != nil {
			t.Fatalf("CreateGoal %d failed: %v", i, err)
		}
	}

	history, err := svc.GetGoalHistory(ctx, testUser, 0, 0)
	if err != nil {
		t.Fatalf("GetGoalHistory failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d goals, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i-1].StartAt < history[i].StartAt {
			t.Errorf("history not ordered by startAt descending: %v", history)
		}
	}

	page, err := svc.GetGoalHistory(ctx, testUser, 1, 1)
	if err != nil {
		t.Fatalf("GetGoalHistory paged failed: %v", err)
	}
	if len(page) != 1 || page[0].StartAt != starts[1] {
		t.Errorf("page = %+v, want single goal starting at %d", page, starts[1])
	}
}

func TestGetGoalHistoryPaginationValidation(t *testing.T) {
	svc := NewGoalService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.GetGoalHistory(ctx, testUser, 101, 0)
	assertErrType(t, err, apperrors.ErrorTypeValidation)

	_, err = svc.GetGoalHistory(ctx, testUser, -1, 0)
	assertErrType(t, err, apperrors.ErrorTypeValidation)

	_, err = svc.GetGoalHistory(ctx, testUser, 10, -1)
	assertErrType(t, err, apperrors.ErrorTypeValidation)
}
