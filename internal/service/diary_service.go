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
	// ErrDiaryEntryNotFound 在日记不存在时返回
	ErrDiaryEntryNotFound = errors.New("diary entry not found")
	// ErrDiaryEntryInvalid 日记字段不合法
	ErrDiaryEntryInvalid = errors.New("invalid diary entry")
)

// DiaryService 管理日记条目
type DiaryService struct {
	db *gorm.DB
}

// DiaryInput 创建/更新日记的字段
type DiaryInput struct {
	Title     string
	Body      string
	Category  string
	EntryDate string
}

// DiaryFilter 列表过滤条件，日期为闭区间
type DiaryFilter struct {
	From     string
	To       string
	Category string
}

// NewDiaryService 构造 DiaryService
func NewDiaryService(gdb *gorm.DB) *DiaryService {
	return &DiaryService{db: gdb}
}

// List 按日期倒序返回日记
func (s *DiaryService) List(userID string, filter DiaryFilter) ([]db.DiaryEntry, error) {
	query := s.db.Where("user_id = ?", userID)
	if filter.From != "" {
		query = query.Where("entry_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("entry_date <= ?", filter.To)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var entries []db.DiaryEntry
	if err := query.Order("entry_date DESC").Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	return entries, nil
}

// Get 根据 ID 获取日记
func (s *DiaryService) Get(userID, id string) (*db.DiaryEntry, error) {
	var entry db.DiaryEntry
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryEntryNotFound
		}
		return nil, fmt.Errorf("get diary entry: %w", err)
	}
	return &entry, nil
}

// Create 新建日记
func (s *DiaryService) Create(userID string, input DiaryInput) (*db.DiaryEntry, error) {
	entry := db.DiaryEntry{UserID: userID}
	if err := applyDiaryInput(&entry, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create diary entry: %w", err)
	}
	return &entry, nil
}

// Update 更新日记
func (s *DiaryService) Update(userID, id string, input DiaryInput) (*db.DiaryEntry, error) {
	entry, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyDiaryInput(entry, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(entry).Error; err != nil {
		return nil, fmt.Errorf("update diary entry: %w", err)
	}
	return entry, nil
}

// Delete 删除日记
func (s *DiaryService) Delete(userID, id string) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&db.DiaryEntry{})
	if result.Error != nil {
		return fmt.Errorf("delete diary entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDiaryEntryNotFound
	}
	return nil
}

// Render 返回日记正文的 HTML
func (s *DiaryService) Render(entry db.DiaryEntry) (string, error) {
	rendered, err := RenderMarkdown(entry.Body)
	if err != nil {
		return "", fmt.Errorf("render diary entry: %w", err)
	}
	return rendered, nil
}

func applyDiaryInput(entry *db.DiaryEntry, input DiaryInput) error {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return fmt.Errorf("%w: body is required", ErrDiaryEntryInvalid)
	}

	day, err := datekey.ParseLocalDayKey(strings.TrimSpace(input.EntryDate), nil)
	if err != nil {
		return fmt.Errorf("%w: entry date %s", ErrDiaryEntryInvalid, input.EntryDate)
	}

	entry.Title = strings.TrimSpace(input.Title)
	entry.Body = body
	entry.Category = strings.TrimSpace(input.Category)
	entry.EntryDate = datekey.LocalDayKey(day)
	return nil
}
