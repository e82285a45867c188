package parser

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/keymacro/keymacro/core/ast"
)

// Cache memoizes Parse results, keyed on a digest of the exact source
// text plus the keystroke interval in effect when it was parsed. Parsing
// itself never reads keystroke_sleep_ms today, but folding it into the
// key means a config-driven change to parsing behavior invalidates
// cached trees instead of silently serving stale ones.
//
// A running keyboard daemon re-parses the same handful of mapping macros
// on every keystroke; Cache turns that into a map lookup after the first.
type Cache struct {
	mu      sync.Mutex
	entries map[[32]byte]cacheEntry
}

type cacheEntry struct {
	node *ast.Node
	err  error
}

// NewCache builds an empty parse cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[[32]byte]cacheEntry)}
}

// Parse returns the cached parse of text if this exact (text,
// keystrokeSleepMs) pair has been seen before, else parses it and caches
// the result, including a failed parse, so a persistently malformed
// mapping doesn't re-run the parser on every keystroke.
func (c *Cache) Parse(text string, keystrokeSleepMs int) (*ast.Node, error) {
	key := digestKey(text, keystrokeSleepMs)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.node, e.err
	}
	c.mu.Unlock()

	node, err := Parse(text)

	c.mu.Lock()
	c.entries[key] = cacheEntry{node: node, err: err}
	c.mu.Unlock()

	return node, err
}

func digestKey(text string, keystrokeSleepMs int) [32]byte {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(text))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(int64(keystrokeSleepMs)))
	h.Write(buf[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
