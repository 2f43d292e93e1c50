package habit

import "time"

// Summary 描述完成数与目标的对比
type Summary struct {
	Completed   int     `json:"completed"`
	Target      int     `json:"target"`
	ProgressPct float64 `json:"progress_pct"`
}

// WeekSummary 附带参与统计的 7 天
type WeekSummary struct {
	Days []time.Time `json:"days"`
	Summary
}

// Calculator 根据习惯的目标配置计算日/周进度
type Calculator struct {
	habit  Habit
	lookup Lookup
}

// NewCalculator 构造 Calculator
func NewCalculator(h Habit, lookup Lookup) Calculator {
	return Calculator{habit: h, lookup: lookup}
}

// DailyTarget 每日目标，至少为 1
func (c Calculator) DailyTarget() int {
	return max(1, c.habit.TargetValue)
}

// WeeklyTarget 每周目标，至少为 1
func (c Calculator) WeeklyTarget() int {
	return max(1, c.habit.TargetValue)
}

// CustomTarget 自定义星期模式下的目标，即选中的天数
func (c Calculator) CustomTarget() int {
	return max(1, len(c.habit.CustomDays))
}

// TargetForMode 按 日目标 > 自定义星期 > 周目标 的顺序取目标
func (c Calculator) TargetForMode() int {
	if c.habit.TargetUnit == UnitDay {
		return c.DailyTarget()
	}
	if len(c.habit.CustomDays) > 0 {
		return c.CustomTarget()
	}
	return c.WeeklyTarget()
}

// WeeklyProgressPct 非日目标模式下的周进度，封顶 100
func (c Calculator) WeeklyProgressPct(completed int) float64 {
	denominator := c.TargetForMode()
	if denominator == 0 {
		return 0
	}
	return min(100, float64(completed)/float64(denominator)*100)
}

// DaySummary 返回单日进度，超额完成时百分比可超过 100
func (c Calculator) DaySummary(day time.Time) Summary {
	completed := c.lookup.SharedCompletedCounts([]time.Time{day})
	target := c.DailyTarget()

	summary := Summary{Completed: completed, Target: target}
	if target > 0 {
		summary.ProgressPct = float64(completed) / float64(target) * 100
	}
	return summary
}

// WeekSummary 返回 start 所在周的进度。
// 日目标习惯先把完成数截断到 目标*7 再算百分比，其余模式直接对百分比封顶。
func (c Calculator) WeekSummary(start time.Time) WeekSummary {
	days := WeekDaysFromStart(start)
	completed := c.lookup.SharedCompletedCounts(days)

	if c.habit.TargetUnit == UnitDay {
		weeklyTarget := c.DailyTarget() * daysPerWeek
		actual := min(completed, weeklyTarget)
		summary := WeekSummary{Days: days, Summary: Summary{Completed: actual, Target: weeklyTarget}}
		if weeklyTarget > 0 {
			summary.ProgressPct = float64(actual) / float64(weeklyTarget) * 100
		}
		return summary
	}

	return WeekSummary{
		Days: days,
		Summary: Summary{
			Completed:   completed,
			Target:      c.TargetForMode(),
			ProgressPct: c.WeeklyProgressPct(completed),
		},
	}
}
