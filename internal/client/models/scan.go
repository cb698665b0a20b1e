package models

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/dmitrijs2005/tuniguard/internal/timex"
)

type ContentType string

const (
	ContentSMS        ContentType = "sms"
	ContentCall       ContentType = "call"
	ContentAppMessage ContentType = "app_message"
)

// ContentTypes lists the accepted scan content types.
var ContentTypes = []ContentType{ContentSMS, ContentCall, ContentAppMessage}

// Severity is one of a fixed set; anything the server sends outside the
// set decodes as SeverityUnknown.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
	SeverityUnknown  Severity = "Unknown"
)

// ParseSeverity matches s case-insensitively.
func ParseSeverity(s string) Severity {
	for _, v := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v
		}
	}
	return SeverityUnknown
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = SeverityUnknown
		return nil
	}
	*s = ParseSeverity(*raw)
	return nil
}

// Score is a detection score in 0..100. Fractional values are rounded and
// out-of-range values clamped.
type Score int

// NewScore rounds and clamps f.
func NewScore(f float64) Score {
	if math.IsNaN(f) {
		return 0
	}
	r := math.Round(f)
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return Score(r)
}

func (s *Score) UnmarshalJSON(b []byte) error {
	var f *float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f == nil {
		*s = 0
		return nil
	}
	*s = NewScore(*f)
	return nil
}

// ScanRequest is sent to POST /api/scan.
type ScanRequest struct {
	UserID       ID          `json:"user_id"`
	Content      string      `json:"content" validate:"notblank,max=5000"`
	ContentType  ContentType `json:"content_type" validate:"required,oneof=sms call app_message"`
	LocationHint string      `json:"location_hint"`
}

func (ScanRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"content.notblank":      "Please enter a message to scan",
		"content.max":           "Message is too long (max 5000 characters)",
		"content_type.required": "Please choose a content type",
		"content_type.oneof":    "Content type must be one of: sms, call, app_message",
	}
}

// ScanResult is the response of POST /api/scan.
type ScanResult struct {
	ScanID          ID         `json:"scan_id"`
	ThreatDetected  bool       `json:"threat_detected"`
	DetectionScore  Score      `json:"detection_score"`
	ThreatType      string     `json:"threat_type"`
	Severity        Severity   `json:"severity"`
	Advice          string     `json:"advice"`
	Explanation     string     `json:"explanation"`
	RedFlags        []string   `json:"red_flags"`
	SafeActions     []string   `json:"safe_actions,omitempty"`
	SignalBars      string     `json:"signal_bars,omitempty"`
	InterceptTime   float64    `json:"intercept_time,omitempty"`
	Timestamp       timex.Time `json:"timestamp"`
	CulturalContext string     `json:"cultural_context,omitempty"`
	UserRiskScore   float64    `json:"user_risk_score,omitempty"`
}

// ScanDetail is the response of GET /api/scan/{id}.
type ScanDetail struct {
	ScanID         ID         `json:"scan_id"`
	UserID         ID         `json:"user_id"`
	InputText      string     `json:"input_text"`
	DetectionScore Score      `json:"detection_score"`
	ThreatType     string     `json:"threat_type"`
	Timestamp      timex.Time `json:"timestamp"`
	InterceptTime  float64    `json:"intercept_time,omitempty"`
	UserAction     *string    `json:"user_action"`
	LocationHint   string     `json:"location_hint"`
}
