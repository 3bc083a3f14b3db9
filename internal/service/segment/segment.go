// Package segment numbers the fragments relayed for each call.
package segment

import (
	"fmt"
	"sync"
)

// Generator hands out per-key sequence numbers starting at 1.
// Thread-safe for concurrent access.
type Generator struct {
	mu       sync.Mutex
	counters map[string]uint64
}

func New() *Generator {
	return &Generator{counters: make(map[string]uint64)}
}

// Seq returns the next sequence number for key.
func (g *Generator) Seq(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[key]++
	return g.counters[key]
}

// Next returns the next segment id for key, e.g. "bot-1-seg-3".
func (g *Generator) Next(key string) string {
	return fmt.Sprintf("%s-seg-%d", key, g.Seq(key))
}
