package redis

import "time"

// ClusterConfig configures a ClusterRouter.
type ClusterConfig struct {
	BootstrapHosts []string
	ClientConfig          // applied to every per-node DirectClient
	RefreshInterval time.Duration
	MaxRedirects    int
}

const (
	defaultRefreshInterval = 5 * time.Second
	defaultMaxRedirects    = 5
)

// ReplicationConfig configures a ReplicationRouter.
type ReplicationConfig struct {
	MasterHost string
	SlaveHosts []string
	ClientConfig
}

// LockConfig parameterizes DistributedLock.tryLock.
type LockConfig struct {
	Validity time.Duration
	MinDelay time.Duration
	MaxDelay time.Duration
	Timeout  time.Duration
}

const (
	defaultLockValidity = 5 * time.Second
	defaultLockMinDelay = time.Millisecond
	defaultLockMaxDelay = 10 * time.Millisecond
	defaultLockTimeout  = 500 * time.Millisecond
)

func (c LockConfig) withDefaults() LockConfig {
	if c.Validity <= 0 {
		c.Validity = defaultLockValidity
	}
	if c.MinDelay <= 0 {
		c.MinDelay = defaultLockMinDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultLockMaxDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultLockTimeout
	}
	return c
}

// SubscriberConfig configures a Subscriber session.
type SubscriberConfig struct {
	Addr           string
	ConnectTimeout time.Duration
	// ReconnectBackoff caps the delay between reconnect attempts; it
	// starts at a small interval and doubles up to this ceiling.
	ReconnectBackoff time.Duration
	// WorkerPoolSize, if >0, dispatches handlers on a bounded pool instead
	// of synchronously on the reader goroutine.
	WorkerPoolSize int
}

const defaultReconnectBackoff = 500 * time.Millisecond
