package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dayboard/internal/config"
	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/service"
)

// 测试数据生成器
func main() {
	var visitor, dbPath string
	flag.StringVar(&visitor, "visitor", "demo-visitor", "visitor id that owns the seeded data")
	flag.StringVar(&dbPath, "db", "", "sqlite database path, defaults to DATABASE_PATH")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	today := time.Now()
	if err := seedAll(visitor, today); err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("访客: %s\n", visitor)
	fmt.Printf("日历: %s\n", datekey.LocalDayKey(today))
}

func seedAll(visitor string, today time.Time) error {
	if err := createTestHabits(visitor, today); err != nil {
		return err
	}
	if err := createTestTasks(visitor, today); err != nil {
		return err
	}
	return createTestDiary(visitor, today)
}

type habitSeed struct {
	input service.HabitInput
	// 相对 today 的天数偏移，负数表示过去
	doneOffsets []int
}

var habitSeeds = []habitSeed{
	{
		input:       service.HabitInput{Title: "晨跑", Category: "健康", TargetValue: 1, TargetUnit: "day", LeniencyThreshold: 1},
		doneOffsets: []int{-6, -5, -4, -2, -1},
	},
	{
		input:       service.HabitInput{Title: "游泳", Category: "健康", TargetValue: 3, TargetUnit: "week"},
		doneOffsets: []int{-3, -1},
	},
	{
		input:       service.HabitInput{Title: "读书", Category: "学习", TargetValue: 2, TargetUnit: "day", CustomDays: []int{1, 3, 5}},
		doneOffsets: []int{-2, -2, -4},
	},
	{
		input: service.HabitInput{Title: "写日记", Category: "生活", TargetValue: 1, TargetUnit: "day", Phase: "future"},
	},
}

// 创建测试习惯与打卡记录
func createTestHabits(visitor string, today time.Time) error {
	var count int64
	db.DB.Model(&db.Habit{}).Where("user_id = ?", visitor).Count(&count)
	if count > 0 {
		fmt.Println("习惯已存在，跳过创建")
		return nil
	}

	habits := service.NewHabitService(db.DB)
	completions := service.NewCompletionService(db.DB)
	ctx := context.Background()

	for _, seed := range habitSeeds {
		h, err := habits.Create(visitor, seed.input)
		if err != nil {
			return fmt.Errorf("create habit %q: %w", seed.input.Title, err)
		}
		for _, offset := range seed.doneOffsets {
			if _, err := completions.Increment(ctx, visitor, h.ID, today.AddDate(0, 0, offset)); err != nil {
				return fmt.Errorf("seed completion for %q: %w", h.Title, err)
			}
		}
	}

	fmt.Printf("✅ 创建了 %d 个习惯\n", len(habitSeeds))
	return nil
}

// 创建测试任务与日历排期
func createTestTasks(visitor string, today time.Time) error {
	var count int64
	db.DB.Model(&db.Task{}).Where("user_id = ?", visitor).Count(&count)
	if count > 0 {
		fmt.Println("任务已存在，跳过创建")
		return nil
	}

	tasks := service.NewTaskService(db.DB, nil)
	calendar := service.NewCalendarService(db.DB, tasks, service.NewHabitService(db.DB))
	todayKey := datekey.LocalDayKey(today)

	work, err := service.NewTaskListService(db.DB, tasks).Create(visitor, service.TaskListInput{Name: "工作", Color: "#6366f1"})
	if err != nil {
		return fmt.Errorf("create task list: %w", err)
	}

	inputs := []service.TaskInput{
		{Title: "交房租", DueDate: todayKey, Priority: "high"},
		{Title: "买菜", DueDate: todayKey, Priority: "low"},
		{TaskListID: work.ID, Title: "整理周报", Priority: "medium", Position: 1},
		{Title: "预约体检", Priority: "medium", Position: 2},
		{TaskListID: work.ID, Title: "提交报销单", Priority: "high", Position: 3},
	}

	created := make([]string, 0, len(inputs))
	for _, input := range inputs {
		task, err := tasks.Create(visitor, input)
		if err != nil {
			return fmt.Errorf("create task %q: %w", input.Title, err)
		}
		created = append(created, task.ID)
	}

	nine, ten := 9*60, 10*60
	schedules := []service.ScheduleInput{
		{ItemType: service.CalendarItemTask, ItemID: created[2], Date: todayKey, StartMinutes: &nine, EndMinutes: &ten},
		{ItemType: service.CalendarItemTask, ItemID: created[3], Date: todayKey},
		{ItemType: service.CalendarItemTask, ItemID: created[4], Date: todayKey, DisplayType: "deadline"},
	}
	for _, input := range schedules {
		if _, err := calendar.Schedule(visitor, input); err != nil {
			return fmt.Errorf("schedule task %s: %w", input.ItemID, err)
		}
	}

	fmt.Printf("✅ 创建了 %d 个任务，%d 条排期\n", len(inputs), len(schedules))
	return nil
}

// 创建测试日记
func createTestDiary(visitor string, today time.Time) error {
	var count int64
	db.DB.Model(&db.DiaryEntry{}).Where("user_id = ?", visitor).Count(&count)
	if count > 0 {
		fmt.Println("日记已存在，跳过创建")
		return nil
	}

	diary := service.NewDiaryService(db.DB)
	entries := []service.DiaryInput{
		{
			Title:     "新的一周",
			Category:  "生活",
			EntryDate: datekey.LocalDayKey(today.AddDate(0, 0, -1)),
			Body:      "## 计划\n\n- [x] 晨跑\n- [ ] 游泳三次\n\n本周重点是把**周报**按时交上。",
		},
		{
			Title:     "读书笔记",
			Category:  "学习",
			EntryDate: datekey.LocalDayKey(today),
			Body:      "> 习惯是复利。\n\n| 书名 | 进度 |\n| --- | --- |\n| 原子习惯 | 60% |",
		},
	}
	for _, input := range entries {
		if _, err := diary.Create(visitor, input); err != nil {
			return fmt.Errorf("create diary entry %q: %w", input.Title, err)
		}
	}

	fmt.Printf("✅ 创建了 %d 篇日记\n", len(entries))
	return nil
}
