package pib

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash"
)

// regularKeyLru is the "small LRU-bounded mapping" spec.md §4.2 requires
// for a user's regular (non-management) key cache. It is split into a
// fixed number of xxhash-selected shards, each independently locked, so a
// lookup for one key name blocks an insert for another only when both key
// names hash to the same shard (spec.md §5 is single-threaded by contract, but
// PibValidator's cache registry (validator.go) is built on a lock-free map
// to be safe if that ever changes — this cache follows suit).
type regularKeyLru struct {
	shards [lruShardCount]lruShard
}

const lruShardCount = 4

type lruShard struct {
	mu       sync.Mutex
	capacity int
	list     *list.List
	items    map[string]*list.Element
}

type lruEntry struct {
	key   string
	value []byte
}

func newRegularKeyLru(capacity int) *regularKeyLru {
	perShard := capacity / lruShardCount
	if perShard < 1 {
		perShard = 1
	}
	c := &regularKeyLru{}
	for i := range c.shards {
		c.shards[i] = lruShard{
			capacity: perShard,
			list:     list.New(),
			items:    make(map[string]*list.Element),
		}
	}
	return c
}

func (c *regularKeyLru) shardFor(key string) *lruShard {
	h := xxhash.Sum64String(key)
	return &c.shards[h%uint64(lruShardCount)]
}

func (c *regularKeyLru) Get(key string) ([]byte, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	s.list.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

func (c *regularKeyLru) Put(key string, value []byte) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		el.Value.(*lruEntry).value = value
		s.list.MoveToFront(el)
		return
	}
	el := s.list.PushFront(&lruEntry{key: key, value: value})
	s.items[key] = el
	if s.list.Len() > s.capacity {
		oldest := s.list.Back()
		if oldest != nil {
			s.list.Remove(oldest)
			delete(s.items, oldest.Value.(*lruEntry).key)
		}
	}
}

func (c *regularKeyLru) Delete(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.list.Remove(el)
		delete(s.items, key)
	}
}
