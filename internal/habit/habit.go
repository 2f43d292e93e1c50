// Package habit 计算习惯的目标、进度，并协调打卡状态的变更。
//
// 包内不做任何 I/O：完成记录的查询与写入全部通过调用方注入的函数完成。
package habit

import "time"

// TargetUnit 决定 TargetValue 的含义
type TargetUnit string

const (
	// UnitDay 表示每日目标
	UnitDay TargetUnit = "day"
	// UnitWeek 表示每周目标
	UnitWeek TargetUnit = "week"
)

// Habit 是计算所需的习惯只读视图
// CustomDays 存放选中的星期（0=周日），非空时周目标取选中天数
type Habit struct {
	ID            string
	TargetValue   int
	TargetUnit    TargetUnit
	CustomDays    []int
	LastCompleted *time.Time
}

// ParseTargetUnit 将字符串转为 TargetUnit，未知值按周目标处理
func ParseTargetUnit(raw string) TargetUnit {
	if TargetUnit(raw) == UnitDay {
		return UnitDay
	}
	return UnitWeek
}
