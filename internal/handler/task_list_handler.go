package handler

import (
	"errors"
	"net/http"

	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/service"
	"github.com/gin-gonic/gin"
)

type taskListPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ListTaskLists 返回当前访客的任务列表
func (a *API) ListTaskLists(c *gin.Context) {
	lists, err := a.taskLists.List(visitorID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	items := make([]gin.H, 0, len(lists))
	for _, list := range lists {
		items = append(items, taskListToPayload(list))
	}
	c.JSON(http.StatusOK, gin.H{"task_lists": items})
}

// CreateTaskList 创建任务列表
func (a *API) CreateTaskList(c *gin.Context) {
	var payload taskListPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	list, err := a.taskLists.Create(visitorID(c), payload.toInput())
	if err != nil {
		handleTaskListError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task_list": taskListToPayload(*list)})
}

// UpdateTaskList 更新任务列表
func (a *API) UpdateTaskList(c *gin.Context) {
	var payload taskListPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	list, err := a.taskLists.Update(visitorID(c), c.Param("id"), payload.toInput())
	if err != nil {
		handleTaskListError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_list": taskListToPayload(*list)})
}

// DeleteTaskList 删除任务列表及其任务
func (a *API) DeleteTaskList(c *gin.Context) {
	if err := a.taskLists.Delete(visitorID(c), c.Param("id")); err != nil {
		handleTaskListError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListTaskListTasks 返回某个列表下的任务
func (a *API) ListTaskListTasks(c *gin.Context) {
	userID := visitorID(c)
	if _, err := a.taskLists.Get(userID, c.Param("id")); err != nil {
		handleTaskListError(c, err)
		return
	}

	tasks, err := a.tasks.ByList(userID, c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务失败")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskToPayload(task))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

func (p taskListPayload) toInput() service.TaskListInput {
	return service.TaskListInput{
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
	}
}

func taskListToPayload(list db.TaskList) gin.H {
	return gin.H{
		"id":          list.ID,
		"name":        list.Name,
		"description": list.Description,
		"color":       list.Color,
	}
}

func handleTaskListError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskListNotFound):
		respondError(c, http.StatusNotFound, "任务列表不存在")
	case errors.Is(err, service.ErrTaskListInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
