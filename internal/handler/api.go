package handler

import (
	"github.com/dayboard/internal/config"
	"github.com/dayboard/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db               *gorm.DB
	habits           *service.HabitService
	completions      *service.CompletionService
	progress         *service.ProgressService
	tasks            *service.TaskService
	taskLists        *service.TaskListService
	calendar         *service.CalendarService
	diary            *service.DiaryService
	maxDeadlineItems int
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, cfg config.AppConfig) *API {
	habits := service.NewHabitService(db).WithAdoptionThreshold(cfg.AdoptionThreshold)
	completions := service.NewCompletionService(db)
	tasks := service.NewTaskService(db, service.NewTaskCache(cfg.TaskCacheTTL))

	return &API{
		db:               db,
		habits:           habits,
		completions:      completions,
		progress:         service.NewProgressService(habits, completions),
		tasks:            tasks,
		taskLists:        service.NewTaskListService(db, tasks),
		calendar:         service.NewCalendarService(db, tasks, habits),
		diary:            service.NewDiaryService(db),
		maxDeadlineItems: cfg.MaxDeadlineItems,
	}
}
