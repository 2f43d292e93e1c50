package service

import (
	"context"
	"testing"
	"time"
)

func TestCompletionServiceToggleAndIncrement(t *testing.T) {
	gdb := setupServiceTestDB(t)
	habits := NewHabitService(gdb)
	svc := NewCompletionService(gdb)
	ctx := context.Background()

	habit, err := habits.Create(testUser, HabitInput{Title: "喝水", TargetValue: 8, TargetUnit: "day"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	day := time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC)

	if svc.IsCompletedOnDate(habit.ID, day) {
		t.Fatal("expected no completion before toggle")
	}

	if err := svc.Toggle(ctx, testUser, habit.ID, day); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	// 同一天的另一时刻也命中同一条记录
	if !svc.IsCompletedOnDate(habit.ID, day.Add(10*time.Hour)) {
		t.Fatal("expected completion after toggle")
	}

	// 重复 Add 不报错也不新增
	if err := svc.Add(ctx, testUser, habit.ID, day); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	count, err := svc.Increment(ctx, testUser, habit.ID, day)
	if err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2 after increment, got %d", count)
	}

	next := day.AddDate(0, 0, 1)
	if count, err := svc.Increment(ctx, testUser, habit.ID, next); err != nil || count != 1 {
		t.Fatalf("expected first increment to create a record, got %d (%v)", count, err)
	}

	completions, err := svc.ListBetween(habit.ID, day, next)
	if err != nil {
		t.Fatalf("ListBetween returned error: %v", err)
	}
	if len(completions) != 2 || completions[0].CompletionDate != "2024-05-13" {
		t.Fatalf("unexpected completions: %+v", completions)
	}

	if err := svc.Toggle(ctx, testUser, habit.ID, day); err != nil {
		t.Fatalf("second Toggle returned error: %v", err)
	}
	if svc.CountForDate(habit.ID, day) != 0 {
		t.Fatal("expected toggle to remove the completion")
	}
}
