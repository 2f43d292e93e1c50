package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/reorder"
	"gorm.io/gorm"
)

const (
	CalendarItemTask  = "task"
	CalendarItemHabit = "habit"
)

var (
	// ErrCalendarItemNotFound 在排期不存在时返回
	ErrCalendarItemNotFound = errors.New("calendar item not found")
	// ErrCalendarItemInvalid 排期字段不合法
	ErrCalendarItemInvalid = errors.New("invalid calendar item")
	// ErrAlreadyScheduled 同一条目在同一时段已排期
	ErrAlreadyScheduled = errors.New("item already scheduled for this slot")
)

// CalendarService 负责把任务/习惯排到某天，并产出日历分区所需的条目
type CalendarService struct {
	db     *gorm.DB
	tasks  *TaskService
	habits *HabitService
}

// ScheduleInput 描述一次排期
type ScheduleInput struct {
	ItemType     string
	ItemID       string
	Date         string
	StartMinutes *int
	EndMinutes   *int
	DisplayType  string
}

// MoveInput 描述把任务从一天的排期挪到另一天
type MoveInput struct {
	TaskID      string
	FromDate    string
	ToDate      string
	DisplayType string
}

// NewCalendarService 构造 CalendarService
func NewCalendarService(gdb *gorm.DB, tasks *TaskService, habits *HabitService) *CalendarService {
	return &CalendarService{db: gdb, tasks: tasks, habits: habits}
}

// Schedule 新建排期，同一用户同一条目在同一天同一开始时间只能排一次
func (s *CalendarService) Schedule(userID string, input ScheduleInput) (*db.CalendarItem, error) {
	item, err := s.buildItem(userID, input)
	if err != nil {
		return nil, err
	}

	// start_minutes 为 NULL 时唯一索引不生效，这里统一按查询判重
	query := s.db.Model(&db.CalendarItem{}).
		Where("user_id = ? AND item_type = ? AND item_id = ? AND scheduled_date = ?",
			userID, item.ItemType, item.ItemID, item.ScheduledDate)
	if item.StartMinutes == nil {
		query = query.Where("start_minutes IS NULL")
	} else {
		query = query.Where("start_minutes = ?", *item.StartMinutes)
	}

	var existing int64
	if err := query.Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check calendar item: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyScheduled
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("create calendar item: %w", err)
	}
	return item, nil
}

// Unschedule 删除排期
func (s *CalendarService) Unschedule(userID, id string) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&db.CalendarItem{})
	if result.Error != nil {
		return fmt.Errorf("delete calendar item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCalendarItemNotFound
	}
	return nil
}

// SetItemCompleted 标记排期完成状态
func (s *CalendarService) SetItemCompleted(userID, id string, done bool) (*db.CalendarItem, error) {
	var item db.CalendarItem
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarItemNotFound
		}
		return nil, fmt.Errorf("get calendar item: %w", err)
	}

	item.Completed = done
	item.CompletedAt = nil
	if done {
		now := time.Now()
		item.CompletedAt = &now
	}

	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("update calendar item: %w", err)
	}
	return &item, nil
}

// Move 把任务在 FromDate 的全部排期改到 ToDate，DisplayType 非空时一并改写分区。
// 目标日同一开始时间已有该任务时返回 ErrAlreadyScheduled，不做部分移动。
func (s *CalendarService) Move(userID string, input MoveInput) ([]db.CalendarItem, error) {
	from, err := datekey.ParseLocalDayKey(input.FromDate, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: from date %s", ErrCalendarItemInvalid, input.FromDate)
	}
	to, err := datekey.ParseLocalDayKey(input.ToDate, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: to date %s", ErrCalendarItemInvalid, input.ToDate)
	}

	display := ""
	if strings.TrimSpace(input.DisplayType) != "" {
		section, err := reorder.ParseSection(input.DisplayType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCalendarItemInvalid, err)
		}
		display = string(section)
	}

	taskID := strings.TrimSpace(input.TaskID)
	if _, err := s.tasks.Get(userID, taskID); err != nil {
		return nil, err
	}

	fromKey, toKey := datekey.LocalDayKey(from), datekey.LocalDayKey(to)
	var moved []db.CalendarItem

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var items []db.CalendarItem
		if err := tx.Where("user_id = ? AND item_type = ? AND item_id = ? AND scheduled_date = ?",
			userID, CalendarItemTask, taskID, fromKey).Order("created_at ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("list calendar items to move: %w", err)
		}
		if len(items) == 0 {
			return ErrCalendarItemNotFound
		}

		for i := range items {
			item := &items[i]
			if toKey != fromKey {
				query := tx.Model(&db.CalendarItem{}).
					Where("user_id = ? AND item_type = ? AND item_id = ? AND scheduled_date = ?",
						userID, CalendarItemTask, taskID, toKey)
				if item.StartMinutes == nil {
					query = query.Where("start_minutes IS NULL")
				} else {
					query = query.Where("start_minutes = ?", *item.StartMinutes)
				}
				var existing int64
				if err := query.Count(&existing).Error; err != nil {
					return fmt.Errorf("check calendar item: %w", err)
				}
				if existing > 0 {
					return ErrAlreadyScheduled
				}
			}

			item.ScheduledDate = toKey
			if display != "" {
				item.DisplayType = display
			}
			if err := tx.Save(item).Error; err != nil {
				return fmt.Errorf("move calendar item: %w", err)
			}
		}

		moved = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// ItemsOn 返回某天的全部排期，按创建时间排序
func (s *CalendarService) ItemsOn(userID, dateKey string) ([]db.CalendarItem, error) {
	var items []db.CalendarItem
	if err := s.db.Where("user_id = ? AND scheduled_date = ?", userID, dateKey).
		Order("created_at ASC").Order("rowid ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list calendar items: %w", err)
	}
	return items, nil
}

// EntriesForDay 返回某天日历分区的条目：
// 先是截止日为当天的任务，再是当天排期的任务（按创建时间）
func (s *CalendarService) EntriesForDay(userID, dateKey string) ([]reorder.Entry, error) {
	due, err := s.tasks.DueOn(userID, dateKey)
	if err != nil {
		return nil, err
	}

	entries := make([]reorder.Entry, 0, len(due))
	for _, task := range due {
		entries = append(entries, reorder.Entry{
			TaskID:      task.ID,
			DisplayType: reorder.SectionTask,
			Title:       task.Title,
			Completed:   task.Completed,
		})
	}

	items, err := s.ItemsOn(userID, dateKey)
	if err != nil {
		return nil, err
	}

	all, err := s.tasks.List(userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]db.Task, len(all))
	for _, task := range all {
		byID[task.ID] = task
	}

	for _, item := range items {
		if item.ItemType != CalendarItemTask {
			continue
		}
		task, ok := byID[item.ItemID]
		if !ok {
			continue
		}

		section, err := reorder.ParseSection(item.DisplayType)
		if err != nil {
			section = reorder.SectionTask
		}
		entries = append(entries, reorder.Entry{
			TaskID:         task.ID,
			CalendarItemID: item.ID,
			DisplayType:    section,
			Title:          task.Title,
			Completed:      item.Completed,
		})
	}

	return entries, nil
}

func (s *CalendarService) buildItem(userID string, input ScheduleInput) (*db.CalendarItem, error) {
	itemType := strings.ToLower(strings.TrimSpace(input.ItemType))
	itemID := strings.TrimSpace(input.ItemID)

	switch itemType {
	case CalendarItemTask:
		if _, err := s.tasks.Get(userID, itemID); err != nil {
			return nil, err
		}
	case CalendarItemHabit:
		if _, err := s.habits.Get(userID, itemID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported item type %s", ErrCalendarItemInvalid, input.ItemType)
	}

	day, err := datekey.ParseLocalDayKey(strings.TrimSpace(input.Date), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: date %s", ErrCalendarItemInvalid, input.Date)
	}

	if input.StartMinutes != nil && (*input.StartMinutes < 0 || *input.StartMinutes >= 24*60) {
		return nil, fmt.Errorf("%w: start out of range", ErrCalendarItemInvalid)
	}
	if input.EndMinutes != nil && input.StartMinutes != nil && *input.EndMinutes <= *input.StartMinutes {
		return nil, fmt.Errorf("%w: end must be after start", ErrCalendarItemInvalid)
	}

	display := reorder.SectionTask
	if strings.TrimSpace(input.DisplayType) != "" {
		section, err := reorder.ParseSection(input.DisplayType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCalendarItemInvalid, err)
		}
		display = section
	}
	if itemType == CalendarItemHabit {
		display = reorder.SectionTask
	}

	return &db.CalendarItem{
		UserID:        userID,
		ItemType:      itemType,
		ItemID:        itemID,
		ScheduledDate: datekey.LocalDayKey(day),
		StartMinutes:  input.StartMinutes,
		EndMinutes:    input.EndMinutes,
		DisplayType:   string(display),
	}, nil
}
