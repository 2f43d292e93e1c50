package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionService 维护 habit_completions 表，日期一律按本地日期归档
type CompletionService struct {
	db *gorm.DB
}

// NewCompletionService 构造 CompletionService
func NewCompletionService(gdb *gorm.DB) *CompletionService {
	return &CompletionService{db: gdb}
}

// IsCompletedOnDate 查询某天是否存在完成记录，出错时记录日志并视为未完成
func (s *CompletionService) IsCompletedOnDate(habitID string, day time.Time) bool {
	return s.CountForDate(habitID, day) > 0
}

// CountForDate 返回某天的完成次数
func (s *CompletionService) CountForDate(habitID string, day time.Time) int {
	var completion db.HabitCompletion
	err := s.db.Where("habit_id = ? AND completion_date = ?", habitID, datekey.LocalDayKey(day)).
		First(&completion).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[habit] failed to load completion for %s: %v", habitID, err)
		}
		return 0
	}
	return completion.CompletionCount
}

// Add 写入某天的完成记录，已存在时保持不变
func (s *CompletionService) Add(ctx context.Context, userID, habitID string, day time.Time) error {
	completion := db.HabitCompletion{
		UserID:          userID,
		HabitID:         habitID,
		CompletionDate:  datekey.LocalDayKey(day),
		CompletionCount: 1,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "completion_date"}},
		DoNothing: true,
	}).Create(&completion).Error
	if err != nil {
		return fmt.Errorf("add completion: %w", err)
	}
	return nil
}

// Remove 删除某天的完成记录
func (s *CompletionService) Remove(ctx context.Context, habitID string, day time.Time) error {
	err := s.db.WithContext(ctx).
		Where("habit_id = ? AND completion_date = ?", habitID, datekey.LocalDayKey(day)).
		Delete(&db.HabitCompletion{}).Error
	if err != nil {
		return fmt.Errorf("remove completion: %w", err)
	}
	return nil
}

// Toggle 翻转某天的完成状态
func (s *CompletionService) Toggle(ctx context.Context, userID, habitID string, day time.Time) error {
	if s.IsCompletedOnDate(habitID, day) {
		return s.Remove(ctx, habitID, day)
	}
	return s.Add(ctx, userID, habitID, day)
}

// Increment 对多次完成的习惯累加计数，返回当天最新次数
func (s *CompletionService) Increment(ctx context.Context, userID, habitID string, day time.Time) (int, error) {
	completion := db.HabitCompletion{
		UserID:          userID,
		HabitID:         habitID,
		CompletionDate:  datekey.LocalDayKey(day),
		CompletionCount: 1,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "habit_id"}, {Name: "completion_date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"completion_count": gorm.Expr("habit_completions.completion_count + 1"),
			"updated_at":       time.Now(),
		}),
	}).Create(&completion).Error
	if err != nil {
		return 0, fmt.Errorf("increment completion: %w", err)
	}

	return s.CountForDate(habitID, day), nil
}

// ListBetween 返回 [from, to] 本地日期范围内的完成记录
func (s *CompletionService) ListBetween(habitID string, from, to time.Time) ([]db.HabitCompletion, error) {
	var completions []db.HabitCompletion
	err := s.db.Where("habit_id = ? AND completion_date BETWEEN ? AND ?",
		habitID, datekey.LocalDayKey(from), datekey.LocalDayKey(to)).
		Order("completion_date ASC").
		Find(&completions).Error
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return completions, nil
}
