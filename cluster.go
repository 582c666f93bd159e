package redis

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// slotRange is one row of a CLUSTER SLOTS reply: slots [start, end] are
// served by master, with replicas as read candidates.
type slotRange struct {
	start, end int
	master     string
	replicas   []string
}

// ClusterRouter dispatches commands across a Redis Cluster: it hashes keys
// to slots, resolves slots to the owning master's DirectClient, and
// transparently follows MOVED (persistent) and ASK (one-shot) redirects.
type ClusterRouter struct {
	bootstrap []string
	config    ClientConfig
	observer  Observer
	maxHops   int

	mu      sync.RWMutex
	slots   [clusterSlotCount]string // host for each slot, "" if unknown
	clients map[string]*DirectClient

	refreshInterval time.Duration
	refreshPending  atomic.Bool
	stop            chan struct{}
}

// NewClusterRouter bootstraps against cfg.BootstrapHosts via CLUSTER SLOTS
// and starts the asynchronous topology-refresh watcher.
func NewClusterRouter(cfg ClusterConfig) (*ClusterRouter, error) {
	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}
	maxHops := cfg.MaxRedirects
	if maxHops <= 0 {
		maxHops = defaultMaxRedirects
	}
	r := &ClusterRouter{
		bootstrap:       cfg.BootstrapHosts,
		config:          cfg.ClientConfig,
		observer:        observer,
		maxHops:         maxHops,
		clients:         make(map[string]*DirectClient),
		refreshInterval: refresh,
		stop:            make(chan struct{}),
	}
	if err := r.refreshTopology(); err != nil {
		return nil, err
	}
	go r.refreshLoop()
	return r, nil
}

// clientFor returns (creating if needed) the DirectClient for host.
func (r *ClusterRouter) clientFor(host string) (*DirectClient, error) {
	r.mu.RLock()
	c, ok := r.clients[host]
	r.mu.RUnlock()
	if ok && c.IsAvailable() {
		return c, nil
	}

	cfg := r.config
	cfg.Addr = host
	cfg.ListName = "cluster"
	nc, err := NewDirectClient(cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.clients[host] = nc
	r.mu.Unlock()
	r.observer.OnCreated("cluster", host)
	return nc, nil
}

// refreshTopology issues CLUSTER SLOTS against the first reachable
// bootstrap (or currently known) host and rebuilds the slot table.
func (r *ClusterRouter) refreshTopology() error {
	hosts := r.bootstrap
	if len(hosts) == 0 {
		r.mu.RLock()
		for h := range r.clients {
			hosts = append(hosts, h)
		}
		r.mu.RUnlock()
	}

	var lastErr error
	for _, host := range hosts {
		c, err := r.clientFor(host)
		if err != nil {
			lastErr = err
			continue
		}
		v, err := c.do("CLUSTER", "SLOTS")
		if err != nil || v.IsError {
			if err == nil {
				err = ServerError(v.Text)
			}
			lastErr = err
			continue
		}
		r.applySlots(v)
		return nil
	}
	return lastErr
}

func (r *ClusterRouter) applySlots(v RespValue) {
	var ranges []slotRange
	for _, row := range v.Array {
		if len(row.Array) < 3 {
			continue
		}
		start := int(row.Array[0].Integer)
		end := int(row.Array[1].Integer)
		master := hostPort(row.Array[2])
		var replicas []string
		for _, rep := range row.Array[3:] {
			replicas = append(replicas, hostPort(rep))
		}
		ranges = append(ranges, slotRange{start: start, end: end, master: master, replicas: replicas})
	}

	r.mu.Lock()
	for _, sr := range ranges {
		for s := sr.start; s <= sr.end && s < clusterSlotCount; s++ {
			r.slots[s] = sr.master
		}
	}
	r.mu.Unlock()

	for _, sr := range ranges {
		if _, err := r.clientFor(sr.master); err != nil {
			logWarnf("redis: cluster slot host %s unreachable during bootstrap: %v", sr.master, err)
		}
	}
}

func hostPort(v RespValue) string {
	if len(v.Array) < 2 {
		return ""
	}
	ip := string(v.Array[0].Bulk)
	port := strconv.FormatInt(v.Array[1].Integer, 10)
	return ip + ":" + port
}

func (r *ClusterRouter) refreshLoop() {
	ticker := time.NewTicker(r.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if err := r.refreshTopology(); err != nil {
				logDebugf("redis: periodic cluster topology refresh failed: %v", err)
			}
		}
	}
}

// requestRefresh asynchronously re-runs CLUSTER SLOTS, coalescing
// concurrent callers into a single in-flight refresh.
func (r *ClusterRouter) requestRefresh() {
	if !r.refreshPending.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer r.refreshPending.Store(false)
		if err := r.refreshTopology(); err != nil {
			logWarnf("redis: triggered cluster topology refresh failed: %v", err)
		}
	}()
}

// Close stops the refresh loop and every per-host client.
func (r *ClusterRouter) Close() error {
	close(r.stop)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.Close()
	}
	return nil
}

// Do dispatches name/args, hashed on key, following MOVED/ASK redirects up
// to maxHops times.
func (r *ClusterRouter) Do(key string, timeout time.Duration, name string, args ...arg) (RespValue, error) {
	slot := keySlot(key)
	host := r.slotHost(slot)
	if host == "" {
		return RespValue{}, ErrIllegalState
	}

	asking := false
	for hop := 0; hop <= r.maxHops; hop++ {
		c, err := r.clientFor(host)
		if err != nil {
			r.requestRefresh()
			return RespValue{}, err
		}

		var v RespValue
		if asking {
			v, err = c.channel.DoAsking(timeout, name, args...)
		} else {
			v, err = c.channel.Do(timeout, name, args...)
		}
		asking = false
		if err != nil {
			r.requestRefresh()
			return RespValue{}, err
		}
		if !v.IsError {
			return v, nil
		}

		switch {
		case strings.HasPrefix(v.Text, "MOVED "):
			newHost := movedTarget(v.Text)
			r.mu.Lock()
			r.slots[slot] = newHost
			r.mu.Unlock()
			host = newHost
			continue
		case strings.HasPrefix(v.Text, "ASK "):
			host = movedTarget(v.Text)
			asking = true
			continue
		case strings.HasPrefix(v.Text, "CLUSTERDOWN"):
			r.requestRefresh()
			return RespValue{}, ServerError(v.Text)
		default:
			return RespValue{}, ServerError(v.Text)
		}
	}
	return RespValue{}, unexpectedf("exceeded %d cluster redirects for slot %d", r.maxHops, slot)
}

func (r *ClusterRouter) slotHost(slot int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[slot]
}

// movedTarget parses the host:port out of a "MOVED <slot> <host:port>" or
// "ASK <slot> <host:port>" server error text.
func movedTarget(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}
