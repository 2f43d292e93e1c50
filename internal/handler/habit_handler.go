package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/habit"
	"github.com/dayboard/internal/service"
	"github.com/gin-gonic/gin"
)

type habitPayload struct {
	Title             string `json:"title"`
	Notes             string `json:"notes"`
	Category          string `json:"category"`
	TargetValue       int    `json:"target_value"`
	TargetUnit        string `json:"target_unit"`
	CustomDays        []int  `json:"custom_days"`
	LeniencyThreshold int    `json:"leniency_threshold"`
	Phase             string `json:"phase"`
}

type phasePayload struct {
	Phase string `json:"phase"`
}

type completionPayload struct {
	Done *bool `json:"done"`
}

type todayPayload struct {
	State string `json:"state"`
}

// ListHabits 返回当前访客的习惯列表
func (a *API) ListHabits(c *gin.Context) {
	filter := service.HabitFilter{
		Phase:    c.Query("phase"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	habits, err := a.habits.List(visitorID(c), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, h := range habits {
		items = append(items, a.habitToPayload(h))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	h, err := a.habits.Get(visitorID(c), c.Param("id"))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": a.habitToPayload(*h)})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	h, err := a.habits.Create(visitorID(c), payload.toInput())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"habit": a.habitToPayload(*h)})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	h, err := a.habits.Update(visitorID(c), c.Param("id"), payload.toInput())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": a.habitToPayload(*h)})
}

// DeleteHabit 删除习惯
func (a *API) DeleteHabit(c *gin.Context) {
	if err := a.habits.Delete(visitorID(c), c.Param("id")); err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// MoveHabitPhase 在 future/current/adopted 之间移动习惯
func (a *API) MoveHabitPhase(c *gin.Context) {
	var payload phasePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	h, err := a.habits.MovePhase(visitorID(c), c.Param("id"), payload.Phase)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": a.habitToPayload(*h)})
}

// GetHabitDay 返回某天的完成进度
func (a *API) GetHabitDay(c *gin.Context) {
	day, key, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	summary, err := a.progress.DaySummary(visitorID(c), c.Param("id"), day)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": key, "summary": summary})
}

// GetHabitWeek 返回 start 所在周的进度，start 缺省为今天
func (a *API) GetHabitWeek(c *gin.Context) {
	start, ok := parseOptionalDateQuery(c, "start", time.Now())
	if !ok {
		return
	}

	summary, err := a.progress.WeekSummary(visitorID(c), c.Param("id"), start)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	days := make([]string, 0, len(summary.Days))
	for _, d := range summary.Days {
		days = append(days, datekey.LocalDayKey(d))
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": datekey.LocalDayKey(habit.WeekStart(start)),
		"days":       days,
		"summary":    summary.Summary,
	})
}

// ListHabitCompletions 返回 [from, to] 内的完成记录，缺省为本周
func (a *API) ListHabitCompletions(c *gin.Context) {
	from, ok := parseOptionalDateQuery(c, "from", habit.WeekStart(time.Now()))
	if !ok {
		return
	}
	to, ok := parseOptionalDateQuery(c, "to", from.AddDate(0, 0, 6))
	if !ok {
		return
	}
	if to.Before(from) {
		respondError(c, http.StatusBadRequest, "结束日期早于开始日期")
		return
	}

	h, err := a.habits.Get(visitorID(c), c.Param("id"))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	completions, err := a.completions.ListBetween(h.ID, from, to)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取完成记录失败")
		return
	}

	items := make([]gin.H, 0, len(completions))
	for _, completion := range completions {
		items = append(items, gin.H{
			"date":  completion.CompletionDate,
			"count": completion.CompletionCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"from":        datekey.LocalDayKey(from),
		"to":          datekey.LocalDayKey(to),
		"completions": items,
	})
}

// SetHabitCompletion 把某天设置为完成/未完成
func (a *API) SetHabitCompletion(c *gin.Context) {
	day, _, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	var payload completionPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	if payload.Done == nil {
		respondError(c, http.StatusBadRequest, "缺少 done 字段")
		return
	}

	snap, err := a.progress.SetDateCompletion(c.Request.Context(), visitorID(c), c.Param("id"), day, *payload.Done)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, a.snapshotToPayload(snap))
}

// ToggleHabitCompletion 翻转某天的完成状态
func (a *API) ToggleHabitCompletion(c *gin.Context) {
	day, _, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	snap, err := a.progress.ToggleDateCompletion(c.Request.Context(), visitorID(c), c.Param("id"), day)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, a.snapshotToPayload(snap))
}

// IncrementHabitCompletion 对某天累加一次完成
func (a *API) IncrementHabitCompletion(c *gin.Context) {
	day, _, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	snap, err := a.progress.IncrementDate(c.Request.Context(), visitorID(c), c.Param("id"), day)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, a.snapshotToPayload(snap))
}

// ToggleHabitToday 处理"今天"三态复选框
func (a *API) ToggleHabitToday(c *gin.Context) {
	var payload todayPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	state, err := habit.ParseToggleState(payload.State)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的勾选状态")
		return
	}

	snap, err := a.progress.ToggleToday(c.Request.Context(), visitorID(c), c.Param("id"), state)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, a.snapshotToPayload(snap))
}

func (p habitPayload) toInput() service.HabitInput {
	return service.HabitInput{
		Title:             p.Title,
		Notes:             p.Notes,
		Category:          p.Category,
		TargetValue:       p.TargetValue,
		TargetUnit:        p.TargetUnit,
		CustomDays:        p.CustomDays,
		LeniencyThreshold: p.LeniencyThreshold,
		Phase:             p.Phase,
	}
}

func (a *API) habitToPayload(h db.Habit) gin.H {
	item := gin.H{
		"id":                 h.ID,
		"title":              h.Title,
		"notes":              h.Notes,
		"category":           h.Category,
		"target_value":       h.TargetValue,
		"target_unit":        h.TargetUnit,
		"custom_days":        h.Weekdays(),
		"leniency_threshold": h.LeniencyThreshold,
		"phase":              h.Phase,
		"streak":             h.Streak,
		"total_completions":  h.TotalCompletions,
		"points":             h.Points,
		"adoption_ready":     a.habits.AdoptionReady(h),
	}

	if h.LastCompleted != nil {
		item["last_completed"] = h.LastCompleted.Format(time.RFC3339)
	}

	return item
}

func (a *API) snapshotToPayload(snap *service.Snapshot) gin.H {
	return gin.H{
		"habit":            a.habitToPayload(snap.Habit),
		"day":              snap.Day,
		"week":             snap.Week.Summary,
		"checked_in_today": snap.Dates.CheckedInToday,
	}
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitInvalidTarget):
		respondError(c, http.StatusBadRequest, "目标配置无效")
	case errors.Is(err, service.ErrHabitPhase):
		respondError(c, http.StatusConflict, "只有进行中的习惯可以打卡")
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		respondError(c, http.StatusConflict, "今天已经打过卡")
	case errors.Is(err, service.ErrNothingToUndo):
		respondError(c, http.StatusConflict, "没有可撤销的打卡")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
