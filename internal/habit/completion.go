package habit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dayboard/internal/datekey"
)

// ErrMissingCollaborator 在构造 Coordinator 缺少必填回调时返回
var ErrMissingCollaborator = errors.New("missing required collaborator")

// ToggleFunc 切换外部存储中的完成记录
type ToggleFunc func(ctx context.Context, habitID string, day time.Time) error

// CheckInFunc 对"今天"执行打卡或撤销
type CheckInFunc func(ctx context.Context, habitID string) error

// DatedCheckInFunc 对指定日期执行打卡或撤销
type DatedCheckInFunc func(ctx context.Context, habitID string, day time.Time) error

// Callbacks 汇总 Coordinator 可调用的外部动作。
// Toggle、OnCheckIn、OnUndoCheckIn 必填；按日期的回调一旦提供，Toggle 将不再被调用。
type Callbacks struct {
	Toggle               ToggleFunc
	OnCheckIn            CheckInFunc
	OnUndoCheckIn        CheckInFunc
	OnCheckInForDate     DatedCheckInFunc
	OnUndoCheckInForDate DatedCheckInFunc
}

// ToggleState 是"今天"复选框的三态输入
type ToggleState int

const (
	StateIndeterminate ToggleState = iota
	StateChecked
	StateUnchecked
)

// ParseToggleState 解析 checked/unchecked/indeterminate（也接受 true/false）
func ParseToggleState(raw string) (ToggleState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "checked", "true":
		return StateChecked, nil
	case "unchecked", "false":
		return StateUnchecked, nil
	case "indeterminate":
		return StateIndeterminate, nil
	default:
		return StateIndeterminate, fmt.Errorf("unknown toggle state %q", raw)
	}
}

// Coordinator 负责把"某天完成/未完成"的请求分发到合适的回调
type Coordinator struct {
	lookup    Lookup
	callbacks Callbacks
	now       func() time.Time
}

// NewCoordinator 构造 Coordinator，必填回调缺失时返回 ErrMissingCollaborator
func NewCoordinator(lookup Lookup, callbacks Callbacks) (*Coordinator, error) {
	switch {
	case lookup.IsCompleted == nil:
		return nil, fmt.Errorf("%w: IsCompleted", ErrMissingCollaborator)
	case callbacks.Toggle == nil:
		return nil, fmt.Errorf("%w: Toggle", ErrMissingCollaborator)
	case callbacks.OnCheckIn == nil:
		return nil, fmt.Errorf("%w: OnCheckIn", ErrMissingCollaborator)
	case callbacks.OnUndoCheckIn == nil:
		return nil, fmt.Errorf("%w: OnUndoCheckIn", ErrMissingCollaborator)
	}

	return &Coordinator{lookup: lookup, callbacks: callbacks, now: time.Now}, nil
}

// WithClock 替换当前时间来源
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	if now != nil {
		c.now = now
	}
	return c
}

// Lookup 返回底层查询适配器
func (c *Coordinator) Lookup() Lookup {
	return c.lookup
}

// SetDateCompletion 把 day 设置为 next 状态，已处于该状态时不做任何事。
// 未提供按日期回调时先等待 Toggle；Toggle 出错则直接返回，后续回调不会触发。
func (c *Coordinator) SetDateCompletion(ctx context.Context, day time.Time, next bool) error {
	if next == c.lookup.IsDoneOnDate(day) {
		return nil
	}

	cb := c.callbacks
	if cb.OnCheckInForDate == nil && cb.OnUndoCheckInForDate == nil {
		if err := cb.Toggle(ctx, c.lookup.HabitID, day); err != nil {
			return err
		}
	}

	// 与存储层不同，这里按 UTC 日期判断是否今天
	isToday := datekey.ISODayKey(day) == datekey.ISODayKey(c.now())

	if next {
		if cb.OnCheckInForDate != nil {
			return cb.OnCheckInForDate(ctx, c.lookup.HabitID, day)
		}
		if isToday {
			return cb.OnCheckIn(ctx, c.lookup.HabitID)
		}
		return nil
	}

	if cb.OnUndoCheckInForDate != nil {
		return cb.OnUndoCheckInForDate(ctx, c.lookup.HabitID, day)
	}
	if isToday {
		return cb.OnUndoCheckIn(ctx, c.lookup.HabitID)
	}
	return nil
}

// ToggleDateCompletion 翻转 day 的完成状态
func (c *Coordinator) ToggleDateCompletion(ctx context.Context, day time.Time) error {
	return c.SetDateCompletion(ctx, day, !c.lookup.IsDoneOnDate(day))
}

// HandleToggleToday 处理"今天"复选框，直接调用 OnCheckIn/OnUndoCheckIn，不经过 Toggle
func (c *Coordinator) HandleToggleToday(ctx context.Context, state ToggleState) error {
	today := c.now()

	switch state {
	case StateChecked:
		if !c.lookup.IsDoneOnDate(today) {
			return c.callbacks.OnCheckIn(ctx, c.lookup.HabitID)
		}
	case StateUnchecked:
		if c.lookup.IsDoneOnDate(today) {
			return c.callbacks.OnUndoCheckIn(ctx, c.lookup.HabitID)
		}
	}
	return nil
}
