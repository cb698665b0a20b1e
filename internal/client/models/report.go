package models

import "time"

// ReportUser is the identity part of an exported report. Tokens are never
// included.
type ReportUser struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	AnonymizedID string `json:"anonymized_id,omitempty"`
}

// Report is the JSON document written by the export command.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	User        ReportUser        `json:"user"`
	Transcript  []TranscriptEntry `json:"transcript"`
	Scans       []ScanResult      `json:"scans"`
}
