package models

// Threat is one entry of the threat catalog.
type Threat struct {
	ThreatID       ID       `json:"threat_id"`
	Type           string   `json:"type"`
	Category       string   `json:"category"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	DetectionCount int      `json:"detection_count"`
}

// ThreatList is the response of GET /api/threats.
type ThreatList struct {
	Total   int      `json:"total"`
	Threats []Threat `json:"threats"`
}

// ThreatFilter narrows the catalog; empty fields are not sent.
type ThreatFilter struct {
	Category string
	Severity string
}

type ThreatCount struct {
	ThreatType string `json:"threat_type"`
	Count      int    `json:"count"`
}

type ContentTypeStats struct {
	Total   int `json:"total"`
	Threats int `json:"threats"`
}

// NationalStats is the response of GET /api/analytics/national.
type NationalStats struct {
	PeriodDays         int                         `json:"period_days"`
	TotalScans         int                         `json:"total_scans"`
	ThreatsDetected    int                         `json:"threats_detected"`
	AverageThreatScore float64                     `json:"average_threat_score"`
	ThreatPercentage   float64                     `json:"threat_percentage"`
	ByContentType      map[string]ContentTypeStats `json:"by_content_type"`
	MostCommonThreats  []ThreatCount               `json:"most_common_threats"`
}

// Health is the response of GET /api/analytics/health.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
