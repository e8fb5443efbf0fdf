package display

import (
	"testing"
)

func TestNewUniformCache(t *testing.T) {
	cache := NewUniformCache(7)

	if cache == nil {
		t.Fatal("NewUniformCache returned nil")
	}
	if cache.locations == nil {
		t.Error("locations map should be initialized")
	}
	if cache.program != 7 {
		t.Errorf("Expected program 7, got %d", cache.program)
	}
}

func TestUniformCacheReturnsCachedLocation(t *testing.T) {
	cache := NewUniformCache(0)
	cache.locations["channel"] = 3

	// A cached name never reaches GL.
	if loc := cache.GetLocation("channel"); loc != 3 {
		t.Errorf("Expected cached location 3, got %d", loc)
	}
}

func TestUniformCacheClear(t *testing.T) {
	cache := NewUniformCache(0)
	cache.locations["scale"] = 5

	cache.Clear()

	if len(cache.locations) != 0 {
		t.Error("Clear should empty the cache")
	}
}
