package habit

import (
	"time"

	"github.com/dayboard/internal/datekey"
)

// Dates 描述习惯卡片展示用的日期信息
type Dates struct {
	Today            time.Time `json:"today"`
	LastCompletedKey string    `json:"last_completed,omitempty"`
	CheckedInToday   bool      `json:"checked_in_today"`
}

// HabitDates 根据 LastCompleted 推导今天是否已打卡（UTC 日期比较）
func HabitDates(h Habit, now time.Time) Dates {
	dates := Dates{Today: now}
	if h.LastCompleted != nil {
		dates.LastCompletedKey = datekey.ISODayKey(*h.LastCompleted)
		dates.CheckedInToday = dates.LastCompletedKey == datekey.ISODayKey(now)
	}
	return dates
}
