// Package redis provides Redis service access over RESP: pipelined
// connections, cluster and replication routing, pub/sub subscription and a
// SET-NX based distributed lock, on top of typed operations for strings,
// counters, lists, sets, sorted sets, hashes and GEO values.
//
// A DirectClient binds one typed command surface to one TCP (or Unix domain
// socket) connection, pipelining concurrent command submissions per
// <https://redis.io/topics/pipelining>. ClusterRouter resolves a raw command
// to the DirectClient owning its key's slot and follows MOVED/ASK redirects;
// ReplicationRouter hands back the master's or a slave's DirectClient for
// the caller to invoke directly. Neither router re-declares the typed
// surface itself — they route to a DirectClient and let the caller use it.
// Multiple goroutines may invoke methods on any exported type here
// simultaneously unless documented otherwise.
package redis
