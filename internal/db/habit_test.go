package db

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestHabitWeekdays(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{name: "empty", raw: "", want: nil},
		{name: "sorted", raw: "5,1,3", want: []int{1, 3, 5}},
		{name: "dedupe and drop invalid", raw: "1, 1,7,x,-1,0", want: []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Habit{CustomDays: tt.raw}.Weekdays()
			if !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if got := FormatWeekdays([]int{1, 3}); got != "1,3" {
		t.Fatalf("unexpected encoded weekdays %q", got)
	}
}

func TestMigrateAssignsUUIDAndEnforcesCompletionUniqueness(t *testing.T) {
	dsn := fmt.Sprintf("file:db-migrate-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := Migrate(gdb); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	habit := Habit{Title: "阅读", TargetValue: 1, TargetUnit: "day"}
	if err := gdb.Create(&habit).Error; err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if len(habit.ID) != 36 {
		t.Fatalf("expected uuid primary key, got %q", habit.ID)
	}

	first := HabitCompletion{HabitID: habit.ID, CompletionDate: "2024-05-13", CompletionCount: 1}
	if err := gdb.Create(&first).Error; err != nil {
		t.Fatalf("failed to create completion: %v", err)
	}

	dup := HabitCompletion{HabitID: habit.ID, CompletionDate: "2024-05-13", CompletionCount: 1}
	if err := gdb.Create(&dup).Error; err == nil {
		t.Fatal("expected unique index violation for duplicate completion date")
	}
}
