package db

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model 是所有表共用的字段，主键为 uuid 字符串
type Model struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate 在主键为空时生成 uuid
func (m *Model) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Habit 定义了习惯模型
// TargetUnit=day 时 TargetValue 为每日目标，week 时为每周目标
// CustomDays 以逗号分隔保存选中的星期（0=周日），非空时覆盖周目标
// Phase 取值 future/current/adopted；Streak/TotalCompletions/LastCompleted 由打卡维护
type Habit struct {
	Model
	UserID            string `gorm:"size:36;index"`
	Title             string `gorm:"not null"`
	Notes             string
	Category          string
	TargetValue       int
	TargetUnit        string `gorm:"size:8;default:week"`
	CustomDays        string
	LeniencyThreshold int
	Phase             string `gorm:"size:16;default:current"`
	Streak            int
	TotalCompletions  int
	LastCompleted     *time.Time
	Points            int
}

// Weekdays 解析 CustomDays，忽略非法值并去重排序
func (h Habit) Weekdays() []int {
	if strings.TrimSpace(h.CustomDays) == "" {
		return nil
	}

	var days []int
	for _, part := range strings.Split(h.CustomDays, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 0 || d > 6 || slices.Contains(days, d) {
			continue
		}
		days = append(days, d)
	}
	slices.Sort(days)
	return days
}

// FormatWeekdays 把星期列表编码为 CustomDays 字段
func FormatWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// HabitCompletion 记录某天的完成情况
// HabitID + CompletionDate 采用唯一索引，CompletionDate 为本地日期 YYYY-MM-DD
// CompletionCount 支持一天多次的习惯
type HabitCompletion struct {
	Model
	UserID          string `gorm:"size:36;index"`
	HabitID         string `gorm:"size:36;index;uniqueIndex:idx_habit_completion_unique"`
	Habit           Habit  `gorm:"constraint:OnDelete:CASCADE"`
	CompletionDate  string `gorm:"size:10;uniqueIndex:idx_habit_completion_unique"`
	CompletionCount int    `gorm:"default:1"`
}

// TableName 确保唯一索引作用到 habit_id + completion_date
func (HabitCompletion) TableName() string {
	return "habit_completions"
}
