package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/habit"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInvalidTarget 当目标或其他配置异常时返回
	ErrHabitInvalidTarget = errors.New("invalid habit target configuration")
	// ErrHabitPhase 只有 current 阶段的习惯可以打卡
	ErrHabitPhase = errors.New("habit is not in current phase")
	// ErrAlreadyCheckedIn 同一天重复打卡
	ErrAlreadyCheckedIn = errors.New("habit already checked in today")
	// ErrNothingToUndo 没有可撤销的打卡
	ErrNothingToUndo = errors.New("no check-ins to undo")
)

// DefaultAdoptionThreshold 连胜多少天后提示可转入 adopted
const DefaultAdoptionThreshold = 7

// HabitService 负责 Habit 数据的增删改查与打卡统计
// 所有查询都按 userID 隔离
type HabitService struct {
	db                *gorm.DB
	now               func() time.Time
	adoptionThreshold int
}

// HabitFilter 描述列表过滤条件
type HabitFilter struct {
	Phase    string
	Category string
	Search   string
}

// HabitInput 定义创建/更新习惯时可配置字段
type HabitInput struct {
	Title             string
	Notes             string
	Category          string
	TargetValue       int
	TargetUnit        string
	CustomDays        []int
	LeniencyThreshold int
	Phase             string
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb, now: time.Now, adoptionThreshold: DefaultAdoptionThreshold}
}

// WithClock 替换时间来源，便于测试
func (s *HabitService) WithClock(now func() time.Time) *HabitService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithAdoptionThreshold 设置转入 adopted 的连胜阈值
func (s *HabitService) WithAdoptionThreshold(days int) *HabitService {
	if days > 0 {
		s.adoptionThreshold = days
	}
	return s
}

// AdoptionReady 判断习惯是否达到转入 adopted 的连胜阈值
func (s *HabitService) AdoptionReady(h db.Habit) bool {
	return habit.PhaseCurrent == habit.Phase(h.Phase) && habit.AdoptionReady(h.Streak, s.adoptionThreshold)
}

// List 返回习惯集合，支持基本筛选
func (s *HabitService) List(userID string, filter HabitFilter) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Model(&db.Habit{}).Where("user_id = ?", userID)

	if filter.Phase != "" {
		query = query.Where("phase = ?", filter.Phase)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("title LIKE ? OR notes LIKE ?", like, like)
	}

	if err := query.Order("created_at DESC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(userID, id string) (*db.Habit, error) {
	var h db.Habit
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &h, nil
}

// Create 新建习惯，阶段缺省为 current
func (s *HabitService) Create(userID string, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	h := db.Habit{UserID: userID}
	applyHabitInput(&h, input)

	if err := s.db.Create(&h).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &h, nil
}

// Update 更新习惯配置，不改动打卡统计
func (s *HabitService) Update(userID, id string, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	existing, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	applyHabitInput(existing, input)

	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return existing, nil
}

// Delete 删除习惯及其完成记录与日历排期，只作用于 userID 自己的数据
func (s *HabitService) Delete(userID, id string) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND habit_id = ?", userID, id).Delete(&db.HabitCompletion{}).Error; err != nil {
			return fmt.Errorf("delete habit completions: %w", err)
		}
		if err := tx.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, CalendarItemHabit, id).
			Delete(&db.CalendarItem{}).Error; err != nil {
			return fmt.Errorf("delete habit calendar items: %w", err)
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&db.Habit{})
		if result.Error != nil {
			return fmt.Errorf("delete habit: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrHabitNotFound
		}
		return nil
	})
}

// CheckIn 记录今天的打卡：更新连胜、累计次数与最后完成时间
func (s *HabitService) CheckIn(ctx context.Context, userID, id string) (*db.Habit, error) {
	h, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if habit.Phase(h.Phase) != habit.PhaseCurrent {
		return nil, ErrHabitPhase
	}

	now := s.now()
	if h.LastCompleted != nil && datekey.ISODayKey(*h.LastCompleted) == datekey.ISODayKey(now) {
		return nil, ErrAlreadyCheckedIn
	}

	h.Streak = habit.NextStreak(h.Streak, h.LastCompleted, h.LeniencyThreshold, now)
	h.TotalCompletions++
	h.LastCompleted = &now

	if err := s.db.WithContext(ctx).Save(h).Error; err != nil {
		return nil, fmt.Errorf("check in habit: %w", err)
	}

	if s.AdoptionReady(*h) {
		log.Printf("[habit] %s reached a %d day streak, ready for adoption", h.ID, h.Streak)
	}
	return h, nil
}

// UndoCheckIn 撤销最近一次打卡，LastCompleted 被清空
func (s *HabitService) UndoCheckIn(ctx context.Context, userID, id string) (*db.Habit, error) {
	h, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if habit.Phase(h.Phase) != habit.PhaseCurrent {
		return nil, ErrHabitPhase
	}
	if h.TotalCompletions <= 0 {
		return nil, ErrNothingToUndo
	}

	h.Streak, h.TotalCompletions = habit.UndoStreak(h.Streak, h.TotalCompletions)
	h.LastCompleted = nil

	if err := s.db.WithContext(ctx).Save(h).Error; err != nil {
		return nil, fmt.Errorf("undo check in: %w", err)
	}
	return h, nil
}

// MovePhase 切换阶段，首次进入 adopted 时奖励积分
func (s *HabitService) MovePhase(userID, id, phase string) (*db.Habit, error) {
	next, ok := habit.ParsePhase(strings.TrimSpace(phase))
	if !ok {
		return nil, fmt.Errorf("%w: unsupported phase %s", ErrHabitInvalidTarget, phase)
	}

	h, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	h.Phase = string(next)
	if next == habit.PhaseAdopted && h.Points == 0 {
		h.Points = habit.AdoptionPoints
	}

	if err := s.db.Save(h).Error; err != nil {
		return nil, fmt.Errorf("move habit phase: %w", err)
	}
	return h, nil
}

// HabitView 把持久化模型转换为计算用的视图
func HabitView(h db.Habit) habit.Habit {
	return habit.Habit{
		ID:            h.ID,
		TargetValue:   h.TargetValue,
		TargetUnit:    habit.ParseTargetUnit(h.TargetUnit),
		CustomDays:    h.Weekdays(),
		LastCompleted: h.LastCompleted,
	}
}

func applyHabitInput(h *db.Habit, input HabitInput) {
	h.Title = strings.TrimSpace(input.Title)
	h.Notes = strings.TrimSpace(input.Notes)
	h.Category = strings.TrimSpace(input.Category)
	h.TargetValue = input.TargetValue
	h.TargetUnit = strings.ToLower(strings.TrimSpace(input.TargetUnit))
	h.CustomDays = db.FormatWeekdays(input.CustomDays)
	h.LeniencyThreshold = input.LeniencyThreshold
	if phase, ok := habit.ParsePhase(strings.TrimSpace(input.Phase)); ok {
		h.Phase = string(phase)
	} else if h.Phase == "" {
		h.Phase = string(habit.PhaseCurrent)
	}
}

func validateHabitInput(input HabitInput) error {
	unit := strings.TrimSpace(strings.ToLower(input.TargetUnit))
	if unit != string(habit.UnitDay) && unit != string(habit.UnitWeek) {
		return fmt.Errorf("%w: unsupported unit %s", ErrHabitInvalidTarget, input.TargetUnit)
	}

	if input.TargetValue <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrHabitInvalidTarget)
	}

	for _, d := range input.CustomDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: weekday %d out of range", ErrHabitInvalidTarget, d)
		}
	}

	if input.LeniencyThreshold < 0 {
		return fmt.Errorf("%w: leniency must not be negative", ErrHabitInvalidTarget)
	}

	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrHabitInvalidTarget)
	}

	return nil
}
