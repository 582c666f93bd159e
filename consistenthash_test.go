package redis

import "testing"

func TestConsistentHashLocatorDeterministic(t *testing.T) {
	l := NewConsistentHashLocator(8)
	first := l.Index("user:42")
	for i := 0; i < 100; i++ {
		if got := l.Index("user:42"); got != first {
			t.Fatalf("Index(%q) = %d on call %d, want stable %d", "user:42", got, i, first)
		}
	}
}

func TestConsistentHashLocatorStaysInBounds(t *testing.T) {
	l := NewConsistentHashLocator(5)
	for _, k := range []string{"a", "b", "user:1", "user:2", ""} {
		if idx := l.Index(k); idx < 0 || idx >= 5 {
			t.Errorf("Index(%q) = %d out of [0,5)", k, idx)
		}
	}
}

func TestConsistentHashLocatorDistributesAcrossNodes(t *testing.T) {
	l := NewConsistentHashLocator(4)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		seen[l.Index(itoa(i))] = true
	}
	if len(seen) != 4 {
		t.Errorf("1000 distinct keys hit %d of 4 nodes, want all 4", len(seen))
	}
}

func TestConsistentHashLocatorZeroNodesReturnsZero(t *testing.T) {
	l := NewConsistentHashLocator(0)
	if idx := l.Index("anything"); idx != 0 {
		t.Errorf("Index() with zero nodes = %d, want 0", idx)
	}
}
