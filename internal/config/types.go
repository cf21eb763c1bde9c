package config

// Config holds all nftterm configuration.
type Config struct {
	Network         string              `json:"network"          mapstructure:"network"`
	RPCAlgorithm    string              `json:"rpc_algorithm"    mapstructure:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs      map[string][]string `json:"custom_rpcs"      mapstructure:"custom_rpcs"`
	StoreBackend    string              `json:"store_backend"    mapstructure:"store_backend"` // "json" | "leveldb" | "pebble" | "memory"
	ScanWindow      uint64              `json:"scan_window"      mapstructure:"scan_window"`   // blocks
	RangeSpan       uint64              `json:"range_span"       mapstructure:"range_span"`    // blocks per eth_getLogs
	BatchSize       int                 `json:"batch_size"       mapstructure:"batch_size"`
	TopHolders      int                 `json:"top_holders"      mapstructure:"top_holders"`
	RecentTransfers int                 `json:"recent_transfers" mapstructure:"recent_transfers"`
	RateLimit       float64             `json:"rate_limit"       mapstructure:"rate_limit"` // requests/s, 0 = unlimited
	RateBurst       int                 `json:"rate_burst"       mapstructure:"rate_burst"`
	BreakerFailures uint32              `json:"breaker_failures" mapstructure:"breaker_failures"`
	RefreshInterval int                 `json:"refresh_interval" mapstructure:"refresh_interval"` // seconds
	Websocket       bool                `json:"websocket"        mapstructure:"websocket"`
	LogFile         string              `json:"log_file"         mapstructure:"log_file"`

	// internal: config dir path used for Save()
	configDir string
}
