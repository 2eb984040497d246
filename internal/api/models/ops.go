package models

// Health is the liveness response.
type Health struct {
	Status   HealthStatus    `json:"status"`
	Time     Timestamp       `json:"time"`
	Version  string          `json:"version,omitempty"`
	Services map[string]bool `json:"services,omitempty"`
}

// SubsystemStatus reports one internal dependency.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// ProviderStatus reports one upstream data provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState,omitempty"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	LastError     string       `json:"lastError,omitempty"`
}

// CacheStatus reports the snapshot cache state.
type CacheStatus struct {
	HasData     bool       `json:"hasData"`
	FetchedAt   *Timestamp `json:"fetchedAt,omitempty"`
	ZoneCount   int        `json:"zoneCount"`
	FailedCount int        `json:"failedCount"`
}

// SystemStatus is the full operational status response.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
	Cache      CacheStatus       `json:"cache"`
	Clients    int               `json:"connectedClients"`
}
