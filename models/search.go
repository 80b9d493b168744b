package models

type SearchPostRequest struct {
	// Query text, in natural language.
	Query string `json:"query"`
}

type SearchPostResponse struct {
	Query  string `json:"query"`
	Result string `json:"result"`

	// StructuredReport is present when the agent managed to extract a
	// structured view of the matching events.
	StructuredReport *SecurityEventReport `json:"structured_report,omitempty"`
}

// SecurityEventReport is the agent's structured analysis of a security event
// query.
type SecurityEventReport struct {
	Query              string   `json:"query"`
	TotalHits          int      `json:"total_hits"`
	EventTime          string   `json:"event_time"`
	EventType          string   `json:"event_type"`
	Severity           string   `json:"severity"`
	Username           string   `json:"username"`
	Hostname           string   `json:"hostname"`
	HostIP             string   `json:"host_ip"`
	Description        string   `json:"description"`
	RecommendedActions []string `json:"recommended_actions"`
	LogSamples         []string `json:"log_samples"`
}
