package service

import (
	"log"
	"slices"
	"sync"
	"time"

	"github.com/dayboard/internal/db"
)

// DefaultTaskCacheTTL 任务列表缓存的默认有效期
const DefaultTaskCacheTTL = 5 * time.Minute

type taskCacheEntry struct {
	tasks     []db.Task
	expiresAt time.Time
}

// TaskCache 按用户缓存任务列表，任务变更时由 TaskService 主动失效
type TaskCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]taskCacheEntry
}

// NewTaskCache 构造缓存，ttl<=0 时使用默认值
func NewTaskCache(ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = DefaultTaskCacheTTL
	}
	return &TaskCache{ttl: ttl, now: time.Now, entries: make(map[string]taskCacheEntry)}
}

// Get 返回未过期的缓存副本
func (c *TaskCache) Get(userID string) ([]db.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, userID)
		return nil, false
	}
	return slices.Clone(entry.tasks), true
}

// Put 写入用户的任务列表
func (c *TaskCache) Put(userID string, tasks []db.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[userID] = taskCacheEntry{tasks: slices.Clone(tasks), expiresAt: c.now().Add(c.ttl)}
}

// InvalidateUser 丢弃某个用户的缓存
func (c *TaskCache) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[userID]; ok {
		delete(c.entries, userID)
		log.Printf("[cache] invalidated tasks for %s", userID)
	}
}
