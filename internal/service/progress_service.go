package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/habit"
)

// ProgressService 把习惯配置与完成记录组合成进度统计，并协调打卡
type ProgressService struct {
	habits      *HabitService
	completions *CompletionService
	now         func() time.Time
}

// Snapshot 是某个习惯在某天的完整进度视图
type Snapshot struct {
	Habit         db.Habit          `json:"-"`
	Day           habit.Summary     `json:"day"`
	Week          habit.WeekSummary `json:"week"`
	Dates         habit.Dates       `json:"dates"`
	AdoptionReady bool              `json:"adoption_ready"`
}

// NewProgressService 构造 ProgressService
func NewProgressService(habits *HabitService, completions *CompletionService) *ProgressService {
	return &ProgressService{habits: habits, completions: completions, now: time.Now}
}

// WithClock 替换时间来源，同时作用于 Coordinator
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *ProgressService) lookup(habitID string) habit.Lookup {
	return habit.Lookup{
		HabitID:      habitID,
		IsCompleted:  s.completions.IsCompletedOnDate,
		CountForDate: s.completions.CountForDate,
	}
}

func (s *ProgressService) calculator(userID, habitID string) (*db.Habit, habit.Calculator, error) {
	h, err := s.habits.Get(userID, habitID)
	if err != nil {
		return nil, habit.Calculator{}, err
	}
	return h, habit.NewCalculator(HabitView(*h), s.lookup(h.ID)), nil
}

// DaySummary 返回某天的完成次数与目标
func (s *ProgressService) DaySummary(userID, habitID string, day time.Time) (habit.Summary, error) {
	_, calc, err := s.calculator(userID, habitID)
	if err != nil {
		return habit.Summary{}, err
	}
	return calc.DaySummary(day), nil
}

// WeekSummary 返回包含 start 的那一周的汇总
func (s *ProgressService) WeekSummary(userID, habitID string, start time.Time) (habit.WeekSummary, error) {
	_, calc, err := s.calculator(userID, habitID)
	if err != nil {
		return habit.WeekSummary{}, err
	}
	return calc.WeekSummary(habit.WeekStart(start)), nil
}

// Snapshot 汇总 day 当天与所在周的进度
func (s *ProgressService) Snapshot(userID, habitID string, day time.Time) (*Snapshot, error) {
	h, calc, err := s.calculator(userID, habitID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Habit:         *h,
		Day:           calc.DaySummary(day),
		Week:          calc.WeekSummary(habit.WeekStart(day)),
		Dates:         habit.HabitDates(HabitView(*h), s.now()),
		AdoptionReady: s.habits.AdoptionReady(*h),
	}, nil
}

// Coordinator 为某个习惯组装完成状态协调器：
// Toggle 写完成记录，打卡/撤销回调更新连胜统计
func (s *ProgressService) Coordinator(userID, habitID string) (*habit.Coordinator, error) {
	h, err := s.habits.Get(userID, habitID)
	if err != nil {
		return nil, err
	}

	callbacks := habit.Callbacks{
		Toggle: func(ctx context.Context, id string, day time.Time) error {
			return s.completions.Toggle(ctx, userID, id, day)
		},
		OnCheckIn: func(ctx context.Context, id string) error {
			_, err := s.habits.CheckIn(ctx, userID, id)
			return ignoreCheckInRejection(id, err)
		},
		OnUndoCheckIn: func(ctx context.Context, id string) error {
			_, err := s.habits.UndoCheckIn(ctx, userID, id)
			return ignoreCheckInRejection(id, err)
		},
	}

	coordinator, err := habit.NewCoordinator(s.lookup(h.ID), callbacks)
	if err != nil {
		return nil, err
	}
	return coordinator.WithClock(s.now), nil
}

// SetDateCompletion 把 day 设置为 done 状态并返回最新进度
func (s *ProgressService) SetDateCompletion(ctx context.Context, userID, habitID string, day time.Time, done bool) (*Snapshot, error) {
	coordinator, err := s.Coordinator(userID, habitID)
	if err != nil {
		return nil, err
	}
	if err := coordinator.SetDateCompletion(ctx, day, done); err != nil {
		return nil, err
	}
	return s.Snapshot(userID, habitID, day)
}

// ToggleDateCompletion 翻转 day 的完成状态
func (s *ProgressService) ToggleDateCompletion(ctx context.Context, userID, habitID string, day time.Time) (*Snapshot, error) {
	coordinator, err := s.Coordinator(userID, habitID)
	if err != nil {
		return nil, err
	}
	if err := coordinator.ToggleDateCompletion(ctx, day); err != nil {
		return nil, err
	}
	return s.Snapshot(userID, habitID, day)
}

// IncrementDate 对 day 累加一次完成，今天的首次完成会同时触发打卡
func (s *ProgressService) IncrementDate(ctx context.Context, userID, habitID string, day time.Time) (*Snapshot, error) {
	h, err := s.habits.Get(userID, habitID)
	if err != nil {
		return nil, err
	}

	count, err := s.completions.Increment(ctx, userID, h.ID, day)
	if err != nil {
		return nil, err
	}
	if count == 1 && datekey.ISODayKey(day) == datekey.ISODayKey(s.now()) {
		_, err := s.habits.CheckIn(ctx, userID, h.ID)
		if err := ignoreCheckInRejection(h.ID, err); err != nil {
			return nil, err
		}
	}
	return s.Snapshot(userID, habitID, day)
}

// ToggleToday 处理"今天"复选框，只更新打卡统计
func (s *ProgressService) ToggleToday(ctx context.Context, userID, habitID string, state habit.ToggleState) (*Snapshot, error) {
	coordinator, err := s.Coordinator(userID, habitID)
	if err != nil {
		return nil, err
	}
	if err := coordinator.HandleToggleToday(ctx, state); err != nil {
		return nil, err
	}
	return s.Snapshot(userID, habitID, s.now())
}

// 打卡被业务规则拒绝时不影响完成记录本身
func ignoreCheckInRejection(habitID string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrHabitPhase), errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrNothingToUndo):
		log.Printf("[habit] check-in skipped for %s: %v", habitID, err)
		return nil
	default:
		return err
	}
}
