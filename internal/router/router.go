package router

import (
	"net/http"

	"github.com/dayboard/internal/config"
	"github.com/dayboard/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("dayboard_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := handler.NewAPI(gdb, cfg)

	group := r.Group("/api")
	group.Use(handler.VisitorRequired())
	{
		group.GET("/habits", api.ListHabits)
		group.POST("/habits", api.CreateHabit)
		group.GET("/habits/:id", api.GetHabit)
		group.PUT("/habits/:id", api.UpdateHabit)
		group.DELETE("/habits/:id", api.DeleteHabit)
		group.POST("/habits/:id/phase", api.MoveHabitPhase)
		group.GET("/habits/:id/day/:date", api.GetHabitDay)
		group.GET("/habits/:id/week", api.GetHabitWeek)
		group.GET("/habits/:id/completions", api.ListHabitCompletions)
		group.PUT("/habits/:id/completions/:date", api.SetHabitCompletion)
		group.POST("/habits/:id/completions/:date/toggle", api.ToggleHabitCompletion)
		group.POST("/habits/:id/completions/:date/increment", api.IncrementHabitCompletion)
		group.POST("/habits/:id/today", api.ToggleHabitToday)

		group.GET("/tasks", api.ListTasks)
		group.POST("/tasks", api.CreateTask)
		group.PUT("/tasks/:id", api.UpdateTask)
		group.DELETE("/tasks/:id", api.DeleteTask)

		group.GET("/task-lists", api.ListTaskLists)
		group.POST("/task-lists", api.CreateTaskList)
		group.PUT("/task-lists/:id", api.UpdateTaskList)
		group.DELETE("/task-lists/:id", api.DeleteTaskList)
		group.GET("/task-lists/:id/tasks", api.ListTaskListTasks)

		group.POST("/calendar/items", api.ScheduleCalendarItem)
		group.DELETE("/calendar/items/:id", api.UnscheduleCalendarItem)
		group.POST("/calendar/items/:id/complete", api.CompleteCalendarItem)
		group.POST("/calendar/:date/drop", api.DropTaskOnDay)
		group.GET("/calendar/:date", api.GetCalendarDay)
		group.POST("/calendar/:date/drag/start", api.StartSectionDrag)
		group.POST("/calendar/:date/drag/over", api.DragOverSection)
		group.POST("/calendar/:date/drag/drop", api.DropSectionDrag)
		group.POST("/calendar/:date/drag/end", api.EndSectionDrag)

		group.GET("/diary", api.ListDiaryEntries)
		group.POST("/diary", api.CreateDiaryEntry)
		group.GET("/diary/:id", api.GetDiaryEntry)
		group.PUT("/diary/:id", api.UpdateDiaryEntry)
		group.DELETE("/diary/:id", api.DeleteDiaryEntry)
	}

	return r
}
