package redis

import "github.com/cespare/xxhash/v2"

// ConsistentHashLocator maps a key deterministically to one of N node
// indices for simple sharding (no cluster protocol, no rebalancing — the
// caller owns the host list and lives with resharding pain on list
// changes, same tradeoff as the teacher's original single-client model).
type ConsistentHashLocator struct {
	nodeCount int
}

// NewConsistentHashLocator builds a locator over nodeCount nodes.
func NewConsistentHashLocator(nodeCount int) *ConsistentHashLocator {
	return &ConsistentHashLocator{nodeCount: nodeCount}
}

// Index returns key's deterministic node index in [0, nodeCount).
func (l *ConsistentHashLocator) Index(key string) int {
	if l.nodeCount <= 0 {
		return 0
	}
	sum := xxhash.Sum64String(key)
	return int(sum % uint64(l.nodeCount))
}
