package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// DefaultPath 数据库文件默认位置
const DefaultPath = "dayboard.db"

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 dayboard.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = DefaultPath
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Migrate 为核心模型创建表
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Habit{},
		&HabitCompletion{},
		&TaskList{},
		&Task{},
		&CalendarItem{},
		&DiaryEntry{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
