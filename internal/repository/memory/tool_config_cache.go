package memory

import (
	"time"

	"ai-contentgen-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

const toolListKey = "__all__"

// ToolConfigCache keeps recently read tool configs so the hot generation path
// does not hit the tool_configs table on every request.
type ToolConfigCache struct {
	cache *cache.Cache
}

func NewToolConfigCache(ttl time.Duration) *ToolConfigCache {
	return &ToolConfigCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *ToolConfigCache) Get(toolName string) (*entity.ToolConfig, bool) {
	if x, found := c.cache.Get(toolName); found {
		tool := *x.(*entity.ToolConfig)
		return &tool, true
	}
	return nil, false
}

func (c *ToolConfigCache) Set(tool *entity.ToolConfig) {
	copied := *tool
	c.cache.Set(tool.ToolName, &copied, cache.DefaultExpiration)
}

func (c *ToolConfigCache) GetAll() ([]*entity.ToolConfig, bool) {
	if x, found := c.cache.Get(toolListKey); found {
		return x.([]*entity.ToolConfig), true
	}
	return nil, false
}

func (c *ToolConfigCache) SetAll(tools []*entity.ToolConfig) {
	c.cache.Set(toolListKey, tools, cache.DefaultExpiration)
}

// Invalidate drops one tool and the list snapshot.
func (c *ToolConfigCache) Invalidate(toolName string) {
	c.cache.Delete(toolName)
	c.cache.Delete(toolListKey)
}
