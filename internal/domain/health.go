package domain

// ServiceHealth describes the state of one dependency probe.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // healthy, degraded, unhealthy
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthStatus aggregates dependency probes for the /healthz endpoint.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// OpsSnapshot is the JSON view of service counters for the ops endpoint.
type OpsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	VipAccounts    int64   `json:"vip_accounts_created"`
	PymeAccounts   int64   `json:"pyme_accounts_created"`
	ExternalErrors int64   `json:"external_errors"`
}
