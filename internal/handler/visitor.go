package handler

import (
	"log"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	visitorSessionKey = "visitor_id"
	visitorContextKey = "__visitor_id"
)

// VisitorRequired 为每个会话分配匿名访客 ID，所有数据按该 ID 隔离
func VisitorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		visitorID, _ := session.Get(visitorSessionKey).(string)
		if strings.TrimSpace(visitorID) == "" {
			visitorID = uuid.NewString()
			session.Set(visitorSessionKey, visitorID)
			if err := session.Save(); err != nil {
				log.Printf("[session] failed to save visitor id: %v", err)
			}
		}

		c.Set(visitorContextKey, visitorID)
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	if id, ok := c.Get(visitorContextKey); ok {
		if value, ok := id.(string); ok {
			return value
		}
	}
	return ""
}
