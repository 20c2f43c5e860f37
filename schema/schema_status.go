package schema

import "time"

// CacheStatus represents the status of the knowledge cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// StoreStatus represents the status of the ledger store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalDraws    int              `json:"total_draws"`
	TestDraws     int              `json:"test_draws"`
	Hypotheses    int              `json:"hypotheses"`
	Outcomes      int              `json:"outcomes"`
	Modes         int              `json:"modes"`
	Relations     int              `json:"relations"`
	OpenEvents    int              `json:"open_events"`
	LatestDraw    string           `json:"latest_draw,omitempty"`
	OldestDraw    string           `json:"oldest_draw,omitempty"`
	SchemaVersion int              `json:"schema_version"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// KnowledgeEntry is a raw row of the knowledge cache.
type KnowledgeEntry struct {
	Scope     string
	Key       string
	Value     []byte
	Version   int
	UpdatedAt int64
}
