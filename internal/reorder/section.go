// Package reorder 维护日历某一天内 "deadline" 与 "task" 两个分区的手动排序。
//
// 排序只是叠加在数据原始顺序之上的展示状态，不做持久化：
// 每次条目集合变化都会与当前顺序对账，已删除的行被丢弃，新行按到达顺序追加。
package reorder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSection 表示未知的分区名
var ErrInvalidSection = errors.New("invalid calendar section")

// Section 是一天内独立排序的分区
type Section string

const (
	SectionTask     Section = "task"
	SectionDeadline Section = "deadline"
)

// ParseSection 解析分区名
func ParseSection(raw string) (Section, error) {
	switch s := Section(strings.TrimSpace(raw)); s {
	case SectionTask, SectionDeadline:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSection, raw)
	}
}

// Entry 是日历上的一行任务。
// CalendarItemID 非空表示这是一次排期，否则只是因截止日期而出现。
type Entry struct {
	TaskID         string  `json:"task_id"`
	CalendarItemID string  `json:"calendar_item_id,omitempty"`
	DisplayType    Section `json:"display_type,omitempty"`
	Title          string  `json:"title"`
	Completed      bool    `json:"completed"`
}

// Section 返回条目所属分区，未标记 deadline 的都归入 task
func (e Entry) Section() Section {
	if e.DisplayType == SectionDeadline {
		return SectionDeadline
	}
	return SectionTask
}

// Scheduled 表示条目是否来自排期
func (e Entry) Scheduled() bool {
	return e.CalendarItemID != ""
}

// SectionItemID 生成行标识。
// 排期条目使用 {section}-ci-{calendarItemID}；
// 其余使用 {section}-due-{taskID}-{dateKey}-{ordinal}，ordinal 为该任务在分区内第几次出现。
func SectionItemID(section Section, entry Entry, dateKey string, ordinal int) string {
	if entry.CalendarItemID != "" {
		return string(section) + "-ci-" + entry.CalendarItemID
	}
	return string(section) + "-due-" + entry.TaskID + "-" + dateKey + "-" + strconv.Itoa(ordinal)
}

// SectionIDs 为分区内每个条目生成行标识
func SectionIDs(section Section, entries []Entry, dateKey string) []string {
	ids := make([]string, len(entries))
	seen := make(map[string]int, len(entries))

	for i, entry := range entries {
		if entry.TaskID == "" && entry.CalendarItemID == "" {
			fallback := entry
			fallback.TaskID = "idx-" + strconv.Itoa(i)
			ids[i] = SectionItemID(section, fallback, dateKey, i)
			continue
		}

		ordinal := 0
		if entry.CalendarItemID == "" {
			ordinal = seen[entry.TaskID]
			seen[entry.TaskID] = ordinal + 1
		}
		ids[i] = SectionItemID(section, entry, dateKey, ordinal)
	}

	return ids
}

// SplitSections 按分区拆分条目，maxDeadline>=0 时只保留前 maxDeadline 条 deadline
func SplitSections(entries []Entry, maxDeadline int) (deadlines, tasks []Entry) {
	for _, entry := range entries {
		if entry.Section() == SectionDeadline {
			deadlines = append(deadlines, entry)
		} else {
			tasks = append(tasks, entry)
		}
	}

	if maxDeadline >= 0 && len(deadlines) > maxDeadline {
		deadlines = deadlines[:maxDeadline]
	}
	return deadlines, tasks
}
