package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 在指定任务不存在时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskInvalid 任务字段不合法
	ErrTaskInvalid = errors.New("invalid task")
)

var taskPriorities = map[string]bool{"low": true, "medium": true, "high": true}

// TaskService 管理待办任务，列表读取经过 TaskCache
type TaskService struct {
	db    *gorm.DB
	cache *TaskCache
}

// TaskInput 创建/更新任务的字段
type TaskInput struct {
	TaskListID string
	Title      string
	Notes      string
	Completed  bool
	DueDate    string
	Priority   string
	Position   int
}

// NewTaskService 构造 TaskService，cache 为空时创建默认缓存
func NewTaskService(gdb *gorm.DB, cache *TaskCache) *TaskService {
	if cache == nil {
		cache = NewTaskCache(DefaultTaskCacheTTL)
	}
	return &TaskService{db: gdb, cache: cache}
}

// List 返回用户的全部任务，按 position、创建时间排序
func (s *TaskService) List(userID string) ([]db.Task, error) {
	if tasks, ok := s.cache.Get(userID); ok {
		return tasks, nil
	}

	var tasks []db.Task
	if err := s.db.Where("user_id = ?", userID).Order("position ASC").Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	s.cache.Put(userID, tasks)
	return tasks, nil
}

// Get 根据 ID 获取任务
func (s *TaskService) Get(userID, id string) (*db.Task, error) {
	var task db.Task
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Create 新建任务
func (s *TaskService) Create(userID string, input TaskInput) (*db.Task, error) {
	task := db.Task{UserID: userID}
	if err := applyTaskInput(&task, input); err != nil {
		return nil, err
	}
	if err := s.ensureListOwned(userID, task.TaskListID); err != nil {
		return nil, err
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.cache.InvalidateUser(userID)
	return &task, nil
}

// Update 更新任务
func (s *TaskService) Update(userID, id string, input TaskInput) (*db.Task, error) {
	task, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyTaskInput(task, input); err != nil {
		return nil, err
	}
	if err := s.ensureListOwned(userID, task.TaskListID); err != nil {
		return nil, err
	}

	if err := s.db.Save(task).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.cache.InvalidateUser(userID)
	return task, nil
}

// Delete 删除任务及其日历排期
func (s *TaskService) Delete(userID, id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, CalendarItemTask, id).
			Delete(&db.CalendarItem{}).Error; err != nil {
			return fmt.Errorf("delete task calendar items: %w", err)
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&db.Task{})
		if result.Error != nil {
			return fmt.Errorf("delete task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateUser(userID)
	return nil
}

// DueOn 返回截止日期为 dateKey 的任务，顺序与 List 一致
func (s *TaskService) DueOn(userID, dateKey string) ([]db.Task, error) {
	tasks, err := s.List(userID)
	if err != nil {
		return nil, err
	}

	due := make([]db.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.DueDate != nil && *task.DueDate == dateKey {
			due = append(due, task)
		}
	}
	return due, nil
}

// ByList 返回某个列表下的任务，顺序与 List 一致
func (s *TaskService) ByList(userID, listID string) ([]db.Task, error) {
	tasks, err := s.List(userID)
	if err != nil {
		return nil, err
	}

	inList := make([]db.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.TaskListID != nil && *task.TaskListID == listID {
			inList = append(inList, task)
		}
	}
	return inList, nil
}

func (s *TaskService) ensureListOwned(userID string, listID *string) error {
	if listID == nil {
		return nil
	}
	var count int64
	if err := s.db.Model(&db.TaskList{}).Where("id = ? AND user_id = ?", *listID, userID).Count(&count).Error; err != nil {
		return fmt.Errorf("check task list: %w", err)
	}
	if count == 0 {
		return ErrTaskListNotFound
	}
	return nil
}

func applyTaskInput(task *db.Task, input TaskInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrTaskInvalid)
	}

	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = "medium"
	}
	if !taskPriorities[priority] {
		return fmt.Errorf("%w: unsupported priority %s", ErrTaskInvalid, input.Priority)
	}

	task.DueDate = nil
	if due := strings.TrimSpace(input.DueDate); due != "" {
		parsed, err := datekey.ParseLocalDayKey(due, nil)
		if err != nil {
			return fmt.Errorf("%w: due date %s", ErrTaskInvalid, due)
		}
		key := datekey.LocalDayKey(parsed)
		task.DueDate = &key
	}

	task.TaskListID = nil
	if listID := strings.TrimSpace(input.TaskListID); listID != "" {
		task.TaskListID = &listID
	}

	task.Title = title
	task.Notes = strings.TrimSpace(input.Notes)
	task.Completed = input.Completed
	task.Priority = priority
	task.Position = input.Position
	return nil
}
