package redis

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultRebuildInterval = 3 * time.Second

// ClientList is a fleet of per-host DirectClients with a background
// rebuild goroutine that keeps retrying construction for hosts whose
// client is missing or unavailable. ClusterRouter and ReplicationRouter
// both sit on top of one.
type ClientList struct {
	name     string
	hosts    []string
	config   ClientConfig
	observer Observer

	mu      sync.RWMutex
	clients []*DirectClient // parallel to hosts; nil entry means "needs rebuild"

	rebuildInterval time.Duration
	stop            chan struct{}
	stopped         atomic.Bool
}

// NewClientList builds one DirectClient per host, eagerly. Hosts that fail
// to connect get a nil entry and are picked up by the background rebuild
// loop, which NewClientList also starts.
func NewClientList(name string, hosts []string, config ClientConfig) *ClientList {
	observer := config.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	l := &ClientList{
		name:            name,
		hosts:           append([]string(nil), hosts...),
		config:          config,
		observer:        observer,
		clients:         make([]*DirectClient, len(hosts)),
		rebuildInterval: defaultRebuildInterval,
		stop:            make(chan struct{}),
	}
	for i, host := range hosts {
		cfg := config
		cfg.Addr = host
		cfg.ListName = name
		if c, err := NewDirectClient(cfg); err == nil {
			l.clients[i] = c
			observer.OnCreated(name, host)
		}
	}
	go l.rebuildLoop()
	return l
}

// Hosts returns the configured host list, in index order.
func (l *ClientList) Hosts() []string { return l.hosts }

// Get returns the client at index, which may be nil or unavailable.
func (l *ClientList) Get(index int) *DirectClient {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.clients) {
		return nil
	}
	return l.clients[index]
}

// OrAvailableClient returns the client at preferredIndex if available,
// otherwise probes up to offset further clients in rotation (wrapping
// around the list), returning the first available one found, or nil if
// none are.
func (l *ClientList) OrAvailableClient(preferredIndex, offset int) *DirectClient {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.clients)
	if n == 0 {
		return nil
	}
	if offset > n {
		offset = n
	}
	for i := 0; i <= offset; i++ {
		idx := ((preferredIndex+i)%n + n) % n
		if c := l.clients[idx]; c != nil && c.IsAvailable() {
			return c
		}
	}
	return nil
}

// Close stops the rebuild loop and closes every live client.
func (l *ClientList) Close() error {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stop)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.clients {
		if c != nil {
			c.Close()
		}
	}
	return nil
}

func (l *ClientList) rebuildLoop() {
	ticker := time.NewTicker(l.rebuildInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.rebuildOnce()
		}
	}
}

func (l *ClientList) rebuildOnce() {
	for i, host := range l.hosts {
		l.mu.RLock()
		existing := l.clients[i]
		l.mu.RUnlock()
		if existing != nil && existing.IsAvailable() {
			continue
		}
		wasMissing := existing == nil

		cfg := l.config
		cfg.Addr = host
		cfg.ListName = l.name
		c, err := NewDirectClient(cfg)
		if err != nil {
			logDebugf("redis: rebuild of %s/%s failed: %v", l.name, host, err)
			continue
		}

		l.mu.Lock()
		l.clients[i] = c
		l.mu.Unlock()

		if wasMissing {
			l.observer.OnCreated(l.name, host)
		} else {
			l.observer.OnRecovered(l.name, host)
		}
	}
}
