package db

import "time"

// Task 定义了待办任务
// DueDate 为本地日期 YYYY-MM-DD，出现在日历当天的 task 分区
type Task struct {
	Model
	UserID     string  `gorm:"size:36;index"`
	TaskListID *string `gorm:"size:36;index"`
	Title      string  `gorm:"not null"`
	Notes      string
	Completed  bool
	DueDate    *string `gorm:"size:10;index"`
	Priority   string  `gorm:"size:8;default:medium"`
	Position   int
}

// TaskList 把任务分组，删除列表时其下任务一并删除
type TaskList struct {
	Model
	UserID      string `gorm:"size:36;index"`
	Name        string `gorm:"not null"`
	Description string
	Color       string `gorm:"size:16"`
}

// TableName 固定表名
func (TaskList) TableName() string {
	return "task_lists"
}

// CalendarItem 是把习惯或任务排到某天的一次安排
// StartMinutes 为空表示全天；DisplayType 决定进入 task 还是 deadline 分区
type CalendarItem struct {
	Model
	UserID        string `gorm:"size:36;uniqueIndex:idx_calendar_item_slot"`
	ItemType      string `gorm:"size:8;uniqueIndex:idx_calendar_item_slot"`
	ItemID        string `gorm:"size:36;index;uniqueIndex:idx_calendar_item_slot"`
	ScheduledDate string `gorm:"size:10;index;uniqueIndex:idx_calendar_item_slot"`
	StartMinutes  *int   `gorm:"uniqueIndex:idx_calendar_item_slot"`
	EndMinutes    *int
	DisplayType   string `gorm:"size:8;default:task"`
	Completed     bool
	CompletedAt   *time.Time
}

// TableName 固定表名
func (CalendarItem) TableName() string {
	return "calendar_items"
}

// DiaryEntry 日记条目，Body 为 Markdown
type DiaryEntry struct {
	Model
	UserID    string `gorm:"size:36;index"`
	Title     string
	Body      string `gorm:"type:text"`
	Category  string
	EntryDate string `gorm:"size:10;index"`
}

// TableName 固定表名
func (DiaryEntry) TableName() string {
	return "diary_entries"
}
