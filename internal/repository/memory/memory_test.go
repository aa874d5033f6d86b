package memory

import (
	"testing"
	"time"

	"ai-contentgen-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagRegistryMarksOncePerWindow(t *testing.T) {
	r := NewFlagRegistry(time.Hour)

	assert.True(t, r.MarkOnce("acct:caption:hour"))
	assert.False(t, r.MarkOnce("acct:caption:hour"))
	assert.True(t, r.MarkOnce("acct:caption:day"))
}

func TestToolConfigCacheReturnsCopies(t *testing.T) {
	c := NewToolConfigCache(time.Minute)
	c.Set(&entity.ToolConfig{ToolName: "caption", CreditCost: 2})

	got, ok := c.Get("caption")
	require.True(t, ok)
	got.CreditCost = 99

	again, ok := c.Get("caption")
	require.True(t, ok)
	assert.Equal(t, 2, again.CreditCost)
}

func TestToolConfigCacheInvalidateDropsList(t *testing.T) {
	c := NewToolConfigCache(time.Minute)
	caption := &entity.ToolConfig{ToolName: "caption"}
	c.Set(caption)
	c.SetAll([]*entity.ToolConfig{caption})

	_, ok := c.GetAll()
	require.True(t, ok)

	c.Invalidate("caption")

	_, ok = c.Get("caption")
	assert.False(t, ok)
	_, ok = c.GetAll()
	assert.False(t, ok)
}
