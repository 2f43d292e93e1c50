package habit

import "time"

// CompletedFunc 回答某习惯在某天是否完成
type CompletedFunc func(habitID string, day time.Time) bool

// CountFunc 返回某习惯在某天的完成次数
type CountFunc func(habitID string, day time.Time) int

// Lookup 适配完成记录的查询方。
// IsCompleted 必填；CustomIsCompleted 与 CountForDate 提供时优先使用。
type Lookup struct {
	HabitID           string
	IsCompleted       CompletedFunc
	CustomIsCompleted CompletedFunc
	CountForDate      CountFunc
}

// IsDoneOnDate 判断 day 是否已完成
func (l Lookup) IsDoneOnDate(day time.Time) bool {
	if l.CustomIsCompleted != nil {
		return l.CustomIsCompleted(l.HabitID, day)
	}
	return l.IsCompleted(l.HabitID, day)
}

// CompletionCountOnDate 返回 day 的完成次数，未提供计数函数时按 0/1 推导
func (l Lookup) CompletionCountOnDate(day time.Time) int {
	if l.CountForDate != nil {
		return l.CountForDate(l.HabitID, day)
	}
	if l.IsDoneOnDate(day) {
		return 1
	}
	return 0
}

// SharedCompletedCounts 汇总 days 内的完成次数
func (l Lookup) SharedCompletedCounts(days []time.Time) int {
	total := 0
	for _, day := range days {
		total += l.CompletionCountOnDate(day)
	}
	return total
}
