package config

import "time"

// Timeouts used by commands.
const (
	RPCSelectTimeout = 10 * time.Second // RPC benchmark and selection
	ReadTimeout      = 30 * time.Second // collection reads
	LoadTimeout      = 2 * time.Minute  // full analytics load including the log scan
)

// Breaker cooldown after it trips.
const BreakerCooldown = 30 * time.Second
