package schema

import "time"

// StoreStatus represents the status of the system store.
type StoreStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalSystems     int              `json:"total_systems"`
	TotalOutputs     int              `json:"total_outputs"`
	PrivateSystems   int              `json:"private_systems"`
	LastCreatedTime  time.Time        `json:"last_created_time"`
	OldestCreateTime time.Time        `json:"oldest_create_time"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// AppInfo is the environment information served by the API.
type AppInfo struct {
	Env        string `json:"env"`
	APIVersion string `json:"api_version"`
	AuthURL    string `json:"auth_url,omitempty"`
	Backend    string `json:"storage_backend"`
}
