package wasm

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func testModule(digest string) *Module {
	return &Module{Digest: digest}
}

func TestModuleCache_GetPut(t *testing.T) {
	cache := newModuleCache(3)

	if _, ok := cache.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}

	m := testModule("a")
	use, evicted := cache.Put(m)
	if use != m {
		t.Error("expected Put to return the stored module")
	}
	if len(evicted) != 0 {
		t.Errorf("expected no evictions, got %d", len(evicted))
	}

	got, ok := cache.Get("a")
	if !ok || got != m {
		t.Error("expected cached module")
	}
	if cache.Len() != 1 {
		t.Errorf("expected cache len 1, got %d", cache.Len())
	}
}

func TestModuleCache_PutDuplicateKeepsFirst(t *testing.T) {
	cache := newModuleCache(3)
	first := testModule("a")
	second := testModule("a")

	cache.Put(first)
	use, evicted := cache.Put(second)
	if use != first {
		t.Error("expected the first module to win")
	}
	if len(evicted) != 1 || evicted[0] != second {
		t.Errorf("expected the redundant module back, got %v", evicted)
	}
	if cache.Len() != 1 {
		t.Errorf("expected cache len 1, got %d", cache.Len())
	}
}

func TestModuleCache_LRU_Eviction(t *testing.T) {
	cache := newModuleCache(3)

	for _, d := range []string{"a", "b", "c"} {
		cache.Put(testModule(d))
	}

	// Access "a" to move it to front
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}

	// Add "d" - should evict "b" (oldest)
	_, evicted := cache.Put(testModule("d"))
	if len(evicted) != 1 || evicted[0].Digest != "b" {
		t.Fatalf("expected b to be evicted, got %v", evicted)
	}

	if cache.Len() != 3 {
		t.Errorf("expected cache len 3 after eviction, got %d", cache.Len())
	}
	for _, d := range []string{"a", "c", "d"} {
		if _, ok := cache.Get(d); !ok {
			t.Errorf("module %q should be in cache", d)
		}
	}
	if _, ok := cache.Get("b"); ok {
		t.Error("module b should have been evicted")
	}
}

func TestModuleCache_DefaultSize(t *testing.T) {
	cache := newModuleCache(0)
	for i := 0; i < DefaultModuleCacheSize+2; i++ {
		cache.Put(testModule(fmt.Sprintf("m%d", i)))
	}
	if cache.Len() != DefaultModuleCacheSize {
		t.Errorf("expected cache len %d, got %d", DefaultModuleCacheSize, cache.Len())
	}
}

func TestModuleCache_ConcurrentAccess(t *testing.T) {
	cache := newModuleCache(4)

	var wg sync.WaitGroup
	numGoroutines := 50
	numIterations := 100
	digests := []string{"a", "b", "c", "d", "e", "f"}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				d := digests[j%len(digests)]
				if _, ok := cache.Get(d); !ok {
					cache.Put(testModule(d))
				}
			}
		}()
	}

	wg.Wait()

	if cache.Len() > 4 {
		t.Errorf("cache exceeded max size: %d", cache.Len())
	}
}

func TestModuleCache_Close(t *testing.T) {
	cache := newModuleCache(3)
	cache.Put(testModule("a"))
	cache.Put(testModule("b"))

	// Modules without a compiled form are skipped
	if err := cache.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after Close, got %d", cache.Len())
	}
}

func BenchmarkModuleCache_Get(b *testing.B) {
	cache := newModuleCache(100)
	digests := make([]string, 50)
	for i := range digests {
		digests[i] = fmt.Sprintf("digest-%d", i)
		cache.Put(testModule(digests[i]))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := cache.Get(digests[i%len(digests)]); !ok {
			b.Fatal("expected hit")
		}
	}
}
