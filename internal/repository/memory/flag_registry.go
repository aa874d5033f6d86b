package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// FlagRegistry remembers which accounts were recently flagged so repeated
// denials inside one window raise a single review signal.
type FlagRegistry struct {
	cache *cache.Cache
}

func NewFlagRegistry(window time.Duration) *FlagRegistry {
	return &FlagRegistry{
		cache: cache.New(window, window),
	}
}

// MarkOnce returns true the first time key is seen within the window.
func (r *FlagRegistry) MarkOnce(key string) bool {
	return r.cache.Add(key, struct{}{}, cache.DefaultExpiration) == nil
}
