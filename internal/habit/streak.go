package habit

import "time"

// Phase 表示习惯所处阶段
type Phase string

const (
	PhaseFuture  Phase = "future"
	PhaseCurrent Phase = "current"
	PhaseAdopted Phase = "adopted"
)

// AdoptionPoints 首次进入 adopted 阶段时奖励的积分
const AdoptionPoints = 50

// ParsePhase 校验阶段取值
func ParsePhase(raw string) (Phase, bool) {
	switch p := Phase(raw); p {
	case PhaseFuture, PhaseCurrent, PhaseAdopted:
		return p, true
	default:
		return "", false
	}
}

// IsConsecutive 判断距上次完成是否仍在宽限期内：间隔不超过 (leniency+1) 天
func IsConsecutive(lastCompleted *time.Time, leniency int, now time.Time) bool {
	if lastCompleted == nil {
		return false
	}
	window := time.Duration(leniency+1) * 24 * time.Hour
	return now.Sub(*lastCompleted) <= window
}

// NextStreak 返回打卡后的连胜天数
func NextStreak(streak int, lastCompleted *time.Time, leniency int, now time.Time) int {
	if IsConsecutive(lastCompleted, leniency, now) {
		return streak + 1
	}
	return 1
}

// UndoStreak 返回撤销一次打卡后的连胜天数与累计次数
func UndoStreak(streak, total int) (int, int) {
	remaining := total - 1
	if remaining <= 0 {
		return 0, 0
	}
	return max(0, streak-1), remaining
}

// AdoptionReady 连胜达到阈值即可考虑转入 adopted
func AdoptionReady(streak, threshold int) bool {
	return threshold > 0 && streak >= threshold
}
