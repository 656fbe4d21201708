package wasm

import (
	"container/list"
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
)

// DefaultModuleCacheSize is the default number of compiled modules kept.
const DefaultModuleCacheSize = 8

// moduleCache is an LRU cache of compiled modules keyed by content digest.
// It is thread-safe and can be accessed concurrently.
type moduleCache struct {
	mu      sync.Mutex
	cache   map[string]*list.Element
	lruList *list.List
	maxSize int
}

type cacheEntry struct {
	digest string
	module *Module
}

func newModuleCache(maxSize int) *moduleCache {
	if maxSize <= 0 {
		maxSize = DefaultModuleCacheSize
	}
	return &moduleCache{
		cache:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached module for digest, marking it recently used.
func (c *moduleCache) Get(digest string) (*Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.cache[digest]
	if !ok {
		return nil, false
	}
	c.lruList.MoveToFront(elem)
	return elem.Value.(*cacheEntry).module, true
}

// Put stores m and returns the module to use, which is the one already
// cached if another caller compiled the same bytes first. Modules that are
// no longer cached, including a redundant m, are returned so the caller can
// close them outside the lock.
func (c *moduleCache) Put(m *Module) (use *Module, evicted []*Module) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[m.Digest]; ok {
		c.lruList.MoveToFront(elem)
		return elem.Value.(*cacheEntry).module, []*Module{m}
	}

	for c.lruList.Len() >= c.maxSize {
		oldest := c.lruList.Back()
		c.lruList.Remove(oldest)
		entry := oldest.Value.(*cacheEntry)
		delete(c.cache, entry.digest)
		evicted = append(evicted, entry.module)
	}

	c.cache[m.Digest] = c.lruList.PushFront(&cacheEntry{digest: m.Digest, module: m})
	return m, evicted
}

// Len returns the current number of cached modules.
func (c *moduleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

// Close drops every entry and closes the compiled modules.
func (c *moduleCache) Close(ctx context.Context) error {
	c.mu.Lock()
	var mods []wazero.CompiledModule
	for elem := c.lruList.Front(); elem != nil; elem = elem.Next() {
		mods = append(mods, elem.Value.(*cacheEntry).module.compiled)
	}
	c.cache = make(map[string]*list.Element)
	c.lruList.Init()
	c.mu.Unlock()

	var firstErr error
	for _, m := range mods {
		if m == nil {
			continue
		}
		if err := m.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
