package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/reorder"
)

func newCalendarFixture(t *testing.T) (*CalendarService, *TaskService, *HabitService) {
	t.Helper()
	gdb := setupServiceTestDB(t)
	tasks := NewTaskService(gdb, NewTaskCache(time.Minute))
	habits := NewHabitService(gdb)
	return NewCalendarService(gdb, tasks, habits), tasks, habits
}

func TestCalendarEntriesForDay(t *testing.T) {
	calendar, tasks, habits := newCalendarFixture(t)
	const day = "2024-05-13"

	dueTask, err := tasks.Create(testUser, TaskInput{Title: "交房租", DueDate: day})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	planned, err := tasks.Create(testUser, TaskInput{Title: "写周报"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	deadline, err := tasks.Create(testUser, TaskInput{Title: "提交材料"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	habit, err := habits.Create(testUser, HabitInput{Title: "晨跑", TargetValue: 1, TargetUnit: "day"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	item, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: planned.ID, Date: day})
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: deadline.ID, Date: day, DisplayType: "deadline"}); err != nil {
		t.Fatalf("Schedule deadline returned error: %v", err)
	}
	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "habit", ItemID: habit.ID, Date: day}); err != nil {
		t.Fatalf("Schedule habit returned error: %v", err)
	}

	entries, err := calendar.EntriesForDay(testUser, day)
	if err != nil {
		t.Fatalf("EntriesForDay returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 task entries, got %d: %+v", len(entries), entries)
	}

	if entries[0].TaskID != dueTask.ID || entries[0].Scheduled() {
		t.Fatalf("expected unscheduled due task first, got %+v", entries[0])
	}
	if entries[1].CalendarItemID != item.ID || entries[1].Section() != reorder.SectionTask {
		t.Fatalf("unexpected scheduled entry: %+v", entries[1])
	}
	if entries[2].Section() != reorder.SectionDeadline {
		t.Fatalf("expected deadline entry last, got %+v", entries[2])
	}

	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: planned.ID, Date: day}); !errors.Is(err, ErrAlreadyScheduled) {
		t.Fatalf("expected ErrAlreadyScheduled, got %v", err)
	}

	start := 9 * 60
	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: planned.ID, Date: day, StartMinutes: &start}); err != nil {
		t.Fatalf("expected timed slot to be allowed, got %v", err)
	}
}

func TestCalendarScheduleValidation(t *testing.T) {
	calendar, tasks, _ := newCalendarFixture(t)
	task, err := tasks.Create(testUser, TaskInput{Title: "整理房间"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	cases := []struct {
		name  string
		input ScheduleInput
		want  error
	}{
		{name: "unknown type", input: ScheduleInput{ItemType: "note", ItemID: task.ID, Date: "2024-05-13"}, want: ErrCalendarItemInvalid},
		{name: "missing task", input: ScheduleInput{ItemType: "task", ItemID: "missing", Date: "2024-05-13"}, want: ErrTaskNotFound},
		{name: "bad date", input: ScheduleInput{ItemType: "task", ItemID: task.ID, Date: "13/05/2024"}, want: ErrCalendarItemInvalid},
		{name: "bad section", input: ScheduleInput{ItemType: "task", ItemID: task.ID, Date: "2024-05-13", DisplayType: "later"}, want: ErrCalendarItemInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := calendar.Schedule(testUser, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCalendarCompleteAndUnschedule(t *testing.T) {
	calendar, tasks, _ := newCalendarFixture(t)
	task, err := tasks.Create(testUser, TaskInput{Title: "整理房间"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	item, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: task.ID, Date: "2024-05-14"})
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	done, err := calendar.SetItemCompleted(testUser, item.ID, true)
	if err != nil {
		t.Fatalf("SetItemCompleted returned error: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatalf("expected item to be completed, got %+v", done)
	}

	if err := calendar.Unschedule(testUser, item.ID); err != nil {
		t.Fatalf("Unschedule returned error: %v", err)
	}
	if err := calendar.Unschedule(testUser, item.ID); !errors.Is(err, ErrCalendarItemNotFound) {
		t.Fatalf("expected ErrCalendarItemNotFound, got %v", err)
	}
	if _, err := calendar.SetItemCompleted(testUser, item.ID, false); !errors.Is(err, ErrCalendarItemNotFound) {
		t.Fatalf("expected ErrCalendarItemNotFound, got %v", err)
	}
}

func TestCalendarMoveTask(t *testing.T) {
	calendar, tasks, _ := newCalendarFixture(t)
	task, err := tasks.Create(testUser, TaskInput{Title: "写周报"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	other, err := tasks.Create(testUser, TaskInput{Title: "买菜"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: task.ID, Date: "2024-05-13"}); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: other.ID, Date: "2024-05-13"}); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	moved, err := calendar.Move(testUser, MoveInput{TaskID: task.ID, FromDate: "2024-05-13", ToDate: "2024-05-15", DisplayType: "deadline"})
	if err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if len(moved) != 1 || moved[0].ScheduledDate != "2024-05-15" || moved[0].DisplayType != "deadline" {
		t.Fatalf("unexpected moved items: %+v", moved)
	}

	left, err := calendar.ItemsOn(testUser, "2024-05-13")
	if err != nil {
		t.Fatalf("ItemsOn returned error: %v", err)
	}
	if len(left) != 1 || left[0].ItemID != other.ID {
		t.Fatalf("expected only the other task to stay behind, got %+v", left)
	}

	if _, err := calendar.Move(testUser, MoveInput{TaskID: task.ID, FromDate: "2024-05-13", ToDate: "2024-05-15"}); !errors.Is(err, ErrCalendarItemNotFound) {
		t.Fatalf("expected ErrCalendarItemNotFound when nothing is scheduled, got %v", err)
	}

	// 目标日已有同一时段的排期时整体拒绝
	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: task.ID, Date: "2024-05-16"}); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if _, err := calendar.Move(testUser, MoveInput{TaskID: task.ID, FromDate: "2024-05-15", ToDate: "2024-05-16"}); !errors.Is(err, ErrAlreadyScheduled) {
		t.Fatalf("expected ErrAlreadyScheduled, got %v", err)
	}
	still, _ := calendar.ItemsOn(testUser, "2024-05-15")
	if len(still) != 1 {
		t.Fatalf("expected rejected move to leave the item in place, got %+v", still)
	}

	if _, err := calendar.Move("intruder", MoveInput{TaskID: task.ID, FromDate: "2024-05-15", ToDate: "2024-05-17"}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for another visitor, got %v", err)
	}
	if _, err := calendar.Move(testUser, MoveInput{TaskID: task.ID, FromDate: "15/05/2024", ToDate: "2024-05-17"}); !errors.Is(err, ErrCalendarItemInvalid) {
		t.Fatalf("expected ErrCalendarItemInvalid for bad date, got %v", err)
	}
	if _, err := calendar.Move(testUser, MoveInput{TaskID: task.ID, FromDate: "2024-05-15", ToDate: "2024-05-17", DisplayType: "later"}); !errors.Is(err, ErrCalendarItemInvalid) {
		t.Fatalf("expected ErrCalendarItemInvalid for bad section, got %v", err)
	}
}

func TestCalendarEntriesForDayUsesCachedTasks(t *testing.T) {
	gdb := setupServiceTestDB(t)
	tasks := NewTaskService(gdb, NewTaskCache(time.Hour))
	calendar := NewCalendarService(gdb, tasks, NewHabitService(gdb))

	task, err := tasks.Create(testUser, TaskInput{Title: "整理房间"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if _, err := calendar.Schedule(testUser, ScheduleInput{ItemType: "task", ItemID: task.ID, Date: "2024-05-13"}); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if _, err := calendar.EntriesForDay(testUser, "2024-05-13"); err != nil {
		t.Fatalf("EntriesForDay returned error: %v", err)
	}

	// 绕过服务改标题，缓存未失效时仍读到旧值
	if err := gdb.Model(&db.Task{}).Where("id = ?", task.ID).Update("title", "改过的标题").Error; err != nil {
		t.Fatalf("failed to update task: %v", err)
	}

	entries, err := calendar.EntriesForDay(testUser, "2024-05-13")
	if err != nil {
		t.Fatalf("EntriesForDay returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "整理房间" {
		t.Fatalf("expected cached task title, got %+v", entries)
	}

	// 孤立排期直接跳过
	if err := gdb.Where("id = ?", task.ID).Delete(&db.Task{}).Error; err != nil {
		t.Fatalf("failed to delete task row: %v", err)
	}
	tasks.cache.InvalidateUser(testUser)
	entries, err = calendar.EntriesForDay(testUser, "2024-05-13")
	if err != nil {
		t.Fatalf("EntriesForDay returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected orphaned item to be skipped, got %+v", entries)
	}
}
