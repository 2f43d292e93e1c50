package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/service"
	"github.com/gin-gonic/gin"
)

type taskPayload struct {
	TaskListID string `json:"task_list_id"`
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	Completed  bool   `json:"completed"`
	DueDate    string `json:"due_date"`
	Priority   string `json:"priority"`
	Position   int    `json:"position"`
}

// ListTasks 返回当前访客的任务
func (a *API) ListTasks(c *gin.Context) {
	tasks, err := a.tasks.List(visitorID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskToPayload(task))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// CreateTask 创建任务
func (a *API) CreateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	task, err := a.tasks.Create(visitorID(c), payload.toInput())
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": taskToPayload(*task)})
}

// UpdateTask 更新任务
func (a *API) UpdateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	task, err := a.tasks.Update(visitorID(c), c.Param("id"), payload.toInput())
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// DeleteTask 删除任务
func (a *API) DeleteTask(c *gin.Context) {
	if err := a.tasks.Delete(visitorID(c), c.Param("id")); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (p taskPayload) toInput() service.TaskInput {
	return service.TaskInput{
		TaskListID: p.TaskListID,
		Title:      p.Title,
		Notes:      p.Notes,
		Completed:  p.Completed,
		DueDate:    p.DueDate,
		Priority:   p.Priority,
		Position:   p.Position,
	}
}

func taskToPayload(task db.Task) gin.H {
	item := gin.H{
		"id":        task.ID,
		"title":     task.Title,
		"notes":     task.Notes,
		"completed": task.Completed,
		"priority":  task.Priority,
		"position":  task.Position,
	}
	if task.DueDate != nil {
		item["due_date"] = *task.DueDate
	}
	if task.TaskListID != nil {
		item["task_list_id"] = *task.TaskListID
	}
	if task.Notes != "" {
		// 渲染失败只丢掉 html，原文仍在 notes 里
		if html, err := service.RenderMarkdown(task.Notes); err == nil {
			item["html"] = html
		} else {
			log.Printf("[task] failed to render notes for %s: %v", task.ID, err)
		}
	}
	return item
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "任务不存在")
	case errors.Is(err, service.ErrTaskListNotFound):
		respondError(c, http.StatusNotFound, "任务列表不存在")
	case errors.Is(err, service.ErrTaskInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
