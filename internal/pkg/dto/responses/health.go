package responses

type Health struct {
	Status      string     `json:"status"`
	Timestamp   string     `json:"timestamp"`
	Uptime      float64    `json:"uptime"`
	Environment string     `json:"environment"`
	Version     string     `json:"version"`
	FHIR        HealthFHIR `json:"fhir"`
}

type HealthFHIR struct {
	Mode     string          `json:"mode"`
	Upstream *UpstreamStatus `json:"upstream,omitempty"`
}

type UpstreamStatus struct {
	Status    string `json:"status"`
	CheckedAt string `json:"checkedAt,omitempty"`
	LatencyMs int64  `json:"latencyMs,omitempty"`
	Error     string `json:"error,omitempty"`
}
