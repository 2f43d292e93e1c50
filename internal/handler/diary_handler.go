package handler

import (
	"errors"
	"net/http"

	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/service"
	"github.com/gin-gonic/gin"
)

type diaryPayload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	EntryDate string `json:"entry_date"`
}

// ListDiaryEntries 返回日记列表，可按 from/to/category 过滤
func (a *API) ListDiaryEntries(c *gin.Context) {
	filter := service.DiaryFilter{
		From:     c.Query("from"),
		To:       c.Query("to"),
		Category: c.Query("category"),
	}

	entries, err := a.diary.List(visitorID(c), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取日记失败")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, diaryToPayload(entry, ""))
	}
	c.JSON(http.StatusOK, gin.H{"entries": items})
}

// GetDiaryEntry 返回单篇日记及渲染后的 HTML
func (a *API) GetDiaryEntry(c *gin.Context) {
	entry, err := a.diary.Get(visitorID(c), c.Param("id"))
	if err != nil {
		handleDiaryError(c, err)
		return
	}
	a.respondDiaryEntry(c, http.StatusOK, entry)
}

// CreateDiaryEntry 新建日记
func (a *API) CreateDiaryEntry(c *gin.Context) {
	var payload diaryPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	entry, err := a.diary.Create(visitorID(c), payload.toInput())
	if err != nil {
		handleDiaryError(c, err)
		return
	}
	a.respondDiaryEntry(c, http.StatusCreated, entry)
}

// UpdateDiaryEntry 更新日记
func (a *API) UpdateDiaryEntry(c *gin.Context) {
	var payload diaryPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	entry, err := a.diary.Update(visitorID(c), c.Param("id"), payload.toInput())
	if err != nil {
		handleDiaryError(c, err)
		return
	}
	a.respondDiaryEntry(c, http.StatusOK, entry)
}

// DeleteDiaryEntry 删除日记
func (a *API) DeleteDiaryEntry(c *gin.Context) {
	if err := a.diary.Delete(visitorID(c), c.Param("id")); err != nil {
		handleDiaryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (a *API) respondDiaryEntry(c *gin.Context, status int, entry *db.DiaryEntry) {
	html, err := a.diary.Render(*entry)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "渲染日记失败")
		return
	}
	c.JSON(status, gin.H{"entry": diaryToPayload(*entry, html)})
}

func (p diaryPayload) toInput() service.DiaryInput {
	return service.DiaryInput{
		Title:     p.Title,
		Body:      p.Body,
		Category:  p.Category,
		EntryDate: p.EntryDate,
	}
}

func diaryToPayload(entry db.DiaryEntry, html string) gin.H {
	item := gin.H{
		"id":         entry.ID,
		"title":      entry.Title,
		"body":       entry.Body,
		"category":   entry.Category,
		"entry_date": entry.EntryDate,
	}
	if html != "" {
		item["html"] = html
	}
	return item
}

func handleDiaryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDiaryEntryNotFound):
		respondError(c, http.StatusNotFound, "日记不存在")
	case errors.Is(err, service.ErrDiaryEntryInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
