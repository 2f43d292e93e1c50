package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/reorder"
	"github.com/dayboard/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const boardSessionKey = "calendar_board"

type scheduleRequest struct {
	ItemType     string `json:"item_type"`
	ItemID       string `json:"item_id"`
	Date         string `json:"date"`
	StartMinutes *int   `json:"start_minutes"`
	EndMinutes   *int   `json:"end_minutes"`
	DisplayType  string `json:"display_type"`
}

type completeRequest struct {
	Done *bool `json:"done"`
}

type dragStartRequest struct {
	Section string `json:"section"`
	RowID   string `json:"row_id"`
}

// RowID 为空表示指针在分区容器上而不是某一行
type dragOverRequest struct {
	Section   string  `json:"section"`
	RowID     string  `json:"row_id"`
	PointerY  float64 `json:"pointer_y"`
	RowTop    float64 `json:"row_top"`
	RowHeight float64 `json:"row_height"`
}

type dragDropRequest struct {
	Section string `json:"section"`
	Marker  string `json:"marker"`
}

// Data 为拖拽数据的纯文本内容；FromDate 非空表示从另一天挪过来
type taskDropRequest struct {
	Data     string `json:"data"`
	Section  string `json:"section"`
	FromDate string `json:"from_date"`
}

// ScheduleCalendarItem 把任务或习惯排到某天
func (a *API) ScheduleCalendarItem(c *gin.Context) {
	var req scheduleRequest
	if !bindJSON(c, &req, "请求参数不合法") {
		return
	}

	item, err := a.calendar.Schedule(visitorID(c), service.ScheduleInput{
		ItemType:     req.ItemType,
		ItemID:       req.ItemID,
		Date:         req.Date,
		StartMinutes: req.StartMinutes,
		EndMinutes:   req.EndMinutes,
		DisplayType:  req.DisplayType,
	})
	if err != nil {
		handleCalendarError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": calendarItemToPayload(*item)})
}

// UnscheduleCalendarItem 删除排期
func (a *API) UnscheduleCalendarItem(c *gin.Context) {
	if err := a.calendar.Unschedule(visitorID(c), c.Param("id")); err != nil {
		handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CompleteCalendarItem 标记排期完成，done 缺省为 true
func (a *API) CompleteCalendarItem(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}

	done := true
	if req.Done != nil {
		done = *req.Done
	}

	item, err := a.calendar.SetItemCompleted(visitorID(c), c.Param("id"), done)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": calendarItemToPayload(*item)})
}

// DropTaskOnDay 把拖到某天的任务排进日历。分区取放置区，未给出时沿用拖拽数据里的分区
func (a *API) DropTaskOnDay(c *gin.Context) {
	_, dateKey, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	var req taskDropRequest
	if !bindJSON(c, &req, "请求参数不合法") {
		return
	}

	taskID, dragged, ok := reorder.ParseText(req.Data)
	if !ok {
		respondError(c, http.StatusBadRequest, "无法识别的拖拽数据")
		return
	}

	display := dragged
	if strings.TrimSpace(req.Section) != "" {
		if display, ok = parseSectionField(c, req.Section); !ok {
			return
		}
	}

	userID := visitorID(c)
	var items []db.CalendarItem
	if strings.TrimSpace(req.FromDate) != "" {
		moved, err := a.calendar.Move(userID, service.MoveInput{
			TaskID:      taskID,
			FromDate:    req.FromDate,
			ToDate:      dateKey,
			DisplayType: string(display),
		})
		if err != nil {
			handleCalendarError(c, err)
			return
		}
		items = moved
	} else {
		item, err := a.calendar.Schedule(userID, service.ScheduleInput{
			ItemType:    service.CalendarItemTask,
			ItemID:      taskID,
			Date:        dateKey,
			DisplayType: string(display),
		})
		if err != nil {
			handleCalendarError(c, err)
			return
		}
		items = []db.CalendarItem{*item}
	}

	board, ok := a.loadBoard(c)
	if !ok {
		return
	}

	payload := make([]gin.H, 0, len(items))
	for _, item := range items {
		payload = append(payload, calendarItemToPayload(item))
	}
	a.respondBoard(c, board, gin.H{"handled": true, "items": payload})
}

// GetCalendarDay 返回某天两个分区按当前顺序排列的行
func (a *API) GetCalendarDay(c *gin.Context) {
	board, ok := a.loadBoard(c)
	if !ok {
		return
	}
	a.respondBoard(c, board, gin.H{})
}

// StartSectionDrag 开始拖拽，返回需要写入拖拽数据的各 MIME 内容
func (a *API) StartSectionDrag(c *gin.Context) {
	var req dragStartRequest
	if !bindJSON(c, &req, "请求参数不合法") {
		return
	}
	section, ok := parseSectionField(c, req.Section)
	if !ok {
		return
	}

	board, ok := a.loadBoard(c)
	if !ok {
		return
	}

	payload, started := board.BeginDrag(section, req.RowID, nil)
	extra := gin.H{"handled": started}
	if started {
		extra["data_transfer"] = payload.Entries()
	}
	a.respondBoard(c, board, extra)
}

// DragOverSection 根据指针位置更新插入点
func (a *API) DragOverSection(c *gin.Context) {
	var req dragOverRequest
	if !bindJSON(c, &req, "请求参数不合法") {
		return
	}
	section, ok := parseSectionField(c, req.Section)
	if !ok {
		return
	}

	board, ok := a.loadBoard(c)
	if !ok {
		return
	}

	var handled bool
	if strings.TrimSpace(req.RowID) == "" {
		handled = board.DragOverSection(section)
	} else {
		handled = board.DragOverRow(section, req.RowID, req.PointerY, reorder.Rect{Top: req.RowTop, Height: req.RowHeight})
	}
	a.respondBoard(c, board, gin.H{"handled": handled})
}

// DropSectionDrag 放置拖拽；携带的排序标记与当前拖拽不符时忽略
func (a *API) DropSectionDrag(c *gin.Context) {
	var req dragDropRequest
	if !bindJSON(c, &req, "请求参数不合法") {
		return
	}
	section, ok := parseSectionField(c, req.Section)
	if !ok {
		return
	}

	board, ok := a.loadBoard(c)
	if !ok {
		return
	}

	handled := false
	if req.Marker == "" || board.MatchesMarker(req.Marker) {
		handled = board.Drop(section)
	}
	a.respondBoard(c, board, gin.H{"handled": handled})
}

// EndSectionDrag 结束拖拽
func (a *API) EndSectionDrag(c *gin.Context) {
	board, ok := a.loadBoard(c)
	if !ok {
		return
	}
	board.EndDrag()
	a.respondBoard(c, board, gin.H{"handled": true})
}

// loadBoard 从会话恢复排序状态，并与当天的条目对账
func (a *API) loadBoard(c *gin.Context) (*reorder.Board, bool) {
	_, dateKey, ok := parseDateParam(c, "date")
	if !ok {
		return nil, false
	}

	entries, err := a.calendar.EntriesForDay(visitorID(c), dateKey)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取日历条目失败")
		return nil, false
	}

	board := reorder.NewBoard(dateKey)
	if raw, _ := sessions.Default(c).Get(boardSessionKey).(string); raw != "" {
		var state reorder.State
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			log.Printf("[calendar] discarding unreadable board state: %v", err)
		} else {
			board = reorder.RestoreBoard(state)
		}
	}

	board.SetMaxDeadlineItems(a.maxDeadlineItems)
	board.Sync(dateKey, entries)
	return board, true
}

func (a *API) respondBoard(c *gin.Context, board *reorder.Board, extra gin.H) {
	board.Close()

	encoded, err := json.Marshal(board.State())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存排序失败")
		return
	}

	session := sessions.Default(c)
	session.Set(boardSessionKey, string(encoded))
	if err := session.Save(); err != nil {
		log.Printf("[calendar] failed to save board state: %v", err)
	}

	extra["date"] = board.DateKey()
	extra["sections"] = gin.H{
		string(reorder.SectionDeadline): rowsOrEmpty(board.Rows(reorder.SectionDeadline)),
		string(reorder.SectionTask):     rowsOrEmpty(board.Rows(reorder.SectionTask)),
	}
	if drag, ok := board.Drag(); ok {
		extra["drag"] = drag
	}

	c.JSON(http.StatusOK, extra)
}

func parseSectionField(c *gin.Context, raw string) (reorder.Section, bool) {
	section, err := reorder.ParseSection(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分区")
		return "", false
	}
	return section, true
}

func rowsOrEmpty(rows []reorder.Row) []reorder.Row {
	if rows == nil {
		return []reorder.Row{}
	}
	return rows
}

func calendarItemToPayload(item db.CalendarItem) gin.H {
	payload := gin.H{
		"id":             item.ID,
		"item_type":      item.ItemType,
		"item_id":        item.ItemID,
		"scheduled_date": item.ScheduledDate,
		"display_type":   item.DisplayType,
		"completed":      item.Completed,
	}
	if item.StartMinutes != nil {
		payload["start_minutes"] = *item.StartMinutes
	}
	if item.EndMinutes != nil {
		payload["end_minutes"] = *item.EndMinutes
	}
	return payload
}

func handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCalendarItemNotFound):
		respondError(c, http.StatusNotFound, "排期不存在")
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "任务不存在")
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrAlreadyScheduled):
		respondError(c, http.StatusConflict, "该时段已排期")
	case errors.Is(err, service.ErrCalendarItemInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
