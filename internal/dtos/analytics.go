package dtos

import "time"

type ScanSummary struct {
	Timestamp  time.Time `json:"timestamp"`
	DeviceType string    `json:"device_type"`
	IPAddress  string    `json:"ip_address"`
}

type AnalyticsResponse struct {
	LinkID     string           `json:"link_id"`
	TotalScans int64            `json:"total_scans"`
	ByDevice   map[string]int64 `json:"by_device"`
	Scans      []ScanSummary    `json:"scans"`
}
