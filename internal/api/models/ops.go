package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
}

// SubsystemStatus represents the status of a subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// AssistantStatus reports the AI provider fleet as the orchestrator sees it.
type AssistantStatus struct {
	Status        HealthStatus      `json:"status"`
	Time          Timestamp         `json:"time"`
	EligibleCount int               `json:"eligibleCount"`
	TotalCount    int               `json:"totalCount"`
	LastSweepAt   *Timestamp        `json:"lastSweepAt,omitempty"`
	Providers     []AssistantHealth `json:"providers"`
}

// AssistantHealth is one provider's health snapshot.
type AssistantHealth struct {
	Provider            string     `json:"provider"`
	State               string     `json:"state"`
	SuccessRate         float64    `json:"successRate"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastLatencyMs       int64      `json:"lastLatencyMs"`
	LastCheckedAt       *Timestamp `json:"lastCheckedAt,omitempty"`
	LastError           *string    `json:"lastError,omitempty"`
}
