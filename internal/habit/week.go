package habit

import (
	"time"

	"github.com/dayboard/internal/datekey"
)

const daysPerWeek = 7

// WeekStart 返回 t 当周周日的本地零点
func WeekStart(t time.Time) time.Time {
	midnight := datekey.LocalMidnight(t)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// WeekDaysFromStart 返回 start 所在周的 7 天，start 为零值时返回 nil
func WeekDaysFromStart(start time.Time) []time.Time {
	if start.IsZero() {
		return nil
	}

	normalized := WeekStart(start)
	days := make([]time.Time, 0, daysPerWeek)
	for i := 0; i < daysPerWeek; i++ {
		days = append(days, normalized.AddDate(0, 0, i))
	}
	return days
}
