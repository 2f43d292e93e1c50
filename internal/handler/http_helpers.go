package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dayboard/internal/datekey"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// parseDateParam 解析路径中的 YYYY-MM-DD，返回本地零点与规范化后的日期
func parseDateParam(c *gin.Context, key string) (time.Time, string, bool) {
	day, err := datekey.ParseLocalDayKey(strings.TrimSpace(c.Param(key)), nil)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, "", false
	}
	return day, datekey.LocalDayKey(day), true
}

// parseOptionalDateQuery 解析查询参数中的日期，缺省时返回 fallback
func parseOptionalDateQuery(c *gin.Context, key string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	day, err := datekey.ParseLocalDayKey(raw, nil)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, false
	}
	return day, true
}
