package redis

import "sync/atomic"

// ReplicationRouter directs writes (and any read flagged UseMaster) to one
// master DirectClient, and plain reads round-robin across a fixed set of
// slave DirectClients. It never silently falls back to the master when
// every slave is unavailable — the caller must opt in to that via
// UseMaster, per spec §4.7.
type ReplicationRouter struct {
	master *ClientList // exactly one host
	slaves *ClientList

	counter atomic.Uint64
}

// NewReplicationRouter builds the master and slave ClientLists eagerly.
// Either list may contain unavailable entries at return time; ClientList's
// background rebuild goroutine keeps retrying them.
func NewReplicationRouter(cfg ReplicationConfig) (*ReplicationRouter, error) {
	if cfg.MasterHost == "" || len(cfg.SlaveHosts) == 0 {
		return nil, ErrInvalidArgument
	}
	master := NewClientList("replication-master", []string{cfg.MasterHost}, cfg.ClientConfig)
	slaves := NewClientList("replication-slave", cfg.SlaveHosts, cfg.ClientConfig)
	return &ReplicationRouter{master: master, slaves: slaves}, nil
}

// Master returns the master DirectClient, for writes and any read the
// caller wants to force through the master (UseMaster semantics).
func (r *ReplicationRouter) Master() (*DirectClient, error) {
	c := r.master.Get(0)
	if c == nil || !c.IsAvailable() {
		return nil, ErrIllegalState
	}
	return c, nil
}

// Read returns the next slave in round-robin rotation, probing forward
// through the remaining slaves if the chosen one is unavailable. It fails
// with ErrIllegalState if every slave is down — it never falls back to
// the master; callers needing that must call Master explicitly (UseMaster
// semantics live at the call site, not in the router).
func (r *ReplicationRouter) Read() (*DirectClient, error) {
	hosts := r.slaves.Hosts()
	n := len(hosts)
	if n == 0 {
		return nil, ErrIllegalState
	}
	idx := int(r.counter.Add(1)-1) % n
	c := r.slaves.OrAvailableClient(idx, n-1)
	if c == nil {
		return nil, ErrIllegalState
	}
	return c, nil
}

// Close tears down every master and slave DirectClient and stops both
// ClientLists' rebuild goroutines.
func (r *ReplicationRouter) Close() error {
	err1 := r.master.Close()
	err2 := r.slaves.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
