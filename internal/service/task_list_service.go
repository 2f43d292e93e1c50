package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dayboard/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrTaskListNotFound 在任务列表不存在时返回
	ErrTaskListNotFound = errors.New("task list not found")
	// ErrTaskListInvalid 任务列表字段不合法
	ErrTaskListInvalid = errors.New("invalid task list")
)

const defaultTaskListColor = "#3b82f6"

// TaskListService 管理任务列表
type TaskListService struct {
	db    *gorm.DB
	tasks *TaskService
}

// TaskListInput 创建/更新任务列表的字段
type TaskListInput struct {
	Name        string
	Description string
	Color       string
}

// NewTaskListService 构造 TaskListService
func NewTaskListService(gdb *gorm.DB, tasks *TaskService) *TaskListService {
	return &TaskListService{db: gdb, tasks: tasks}
}

// List 按创建时间倒序返回列表
func (s *TaskListService) List(userID string) ([]db.TaskList, error) {
	var lists []db.TaskList
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("list task lists: %w", err)
	}
	return lists, nil
}

// Get 根据 ID 获取列表
func (s *TaskListService) Get(userID, id string) (*db.TaskList, error) {
	var list db.TaskList
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskListNotFound
		}
		return nil, fmt.Errorf("get task list: %w", err)
	}
	return &list, nil
}

// Create 新建列表
func (s *TaskListService) Create(userID string, input TaskListInput) (*db.TaskList, error) {
	list := db.TaskList{UserID: userID}
	if err := applyTaskListInput(&list, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&list).Error; err != nil {
		return nil, fmt.Errorf("create task list: %w", err)
	}
	return &list, nil
}

// Update 更新列表
func (s *TaskListService) Update(userID, id string, input TaskListInput) (*db.TaskList, error) {
	list, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyTaskListInput(list, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(list).Error; err != nil {
		return nil, fmt.Errorf("update task list: %w", err)
	}
	return list, nil
}

// Delete 删除列表以及其下的任务和这些任务的排期
func (s *TaskListService) Delete(userID, id string) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&db.Task{}).Select("id").Where("user_id = ? AND task_list_id = ?", userID, id)
		if err := tx.Where("user_id = ? AND item_type = ? AND item_id IN (?)", userID, CalendarItemTask, taskIDs).
			Delete(&db.CalendarItem{}).Error; err != nil {
			return fmt.Errorf("delete task list calendar items: %w", err)
		}
		if err := tx.Where("user_id = ? AND task_list_id = ?", userID, id).Delete(&db.Task{}).Error; err != nil {
			return fmt.Errorf("delete task list tasks: %w", err)
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&db.TaskList{}).Error; err != nil {
			return fmt.Errorf("delete task list: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.tasks.cache.InvalidateUser(userID)
	return nil
}

func applyTaskListInput(list *db.TaskList, input TaskListInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrTaskListInvalid)
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = defaultTaskListColor
	}

	list.Name = name
	list.Description = strings.TrimSpace(input.Description)
	list.Color = color
	return nil
}
