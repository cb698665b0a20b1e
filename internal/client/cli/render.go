package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/client/services"
	"github.com/dmitrijs2005/tuniguard/internal/validatex"
)

const timeFormat = "2006-01-02 15:04"

// describeError turns a command error into the line shown to the user.
// Validation and server messages are shown verbatim; connectivity failures
// get a generic hint.
func describeError(err error) string {
	var vErr *validatex.ValidationError
	var apiErr *client.APIError
	switch {
	case errors.Is(err, services.ErrCancelled):
		return "Cancelled."
	case errors.Is(err, services.ErrNoSession):
		return "Please log in first (login, register or guest)."
	case errors.Is(err, services.ErrGuestRestricted):
		return "This feature requires an account. Please log out and register or log in."
	case errors.Is(err, services.ErrEmptyMessage):
		return "Please type a message."
	case errors.As(err, &vErr):
		return "⚠️ " + vErr.Message
	case errors.As(err, &apiErr):
		return "❌ " + apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return "⚠️ " + client.ConnectionErrorMessage
	default:
		return "❌ Error: " + err.Error()
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeFormat)
}

func printScanResult(w io.Writer, r *models.ScanResult) {
	if r.ThreatDetected {
		fmt.Fprintln(w, "⚠️ THREAT DETECTED!")
	} else {
		fmt.Fprintln(w, "✅ MESSAGE IS SAFE")
	}
	fmt.Fprintf(w, "Threat confidence score: %d/100\n", r.DetectionScore)
	fmt.Fprintf(w, "Severity: %s\n", r.Severity)
	if r.ThreatType != "" && r.ThreatType != "None" {
		fmt.Fprintf(w, "Threat type: %s\n", r.ThreatType)
	}
	if r.Explanation != "" {
		fmt.Fprintf(w, "Analysis: %s\n", r.Explanation)
	}
	if len(r.RedFlags) > 0 {
		fmt.Fprintln(w, "Red flags:")
		for _, f := range r.RedFlags {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if r.Advice != "" {
		fmt.Fprintf(w, "Recommended actions: %s\n", r.Advice)
	}
	for _, s := range r.SafeActions {
		fmt.Fprintf(w, "  * %s\n", s)
	}
	if r.CulturalContext != "" {
		fmt.Fprintf(w, "Context: %s\n", r.CulturalContext)
	}
	fmt.Fprintf(w, "Scanned at: %s\n", formatTime(r.Timestamp.Time))
	fmt.Fprintf(w, "Scan ID: %s\n", r.ScanID)
}

func printScanDetail(w io.Writer, d *models.ScanDetail) {
	fmt.Fprintf(w, "Scan ID: %s\n", d.ScanID)
	fmt.Fprintf(w, "Scanned at: %s\n", formatTime(d.Timestamp.Time))
	fmt.Fprintf(w, "Threat confidence score: %d/100\n", d.DetectionScore)
	if d.ThreatType != "" {
		fmt.Fprintf(w, "Threat type: %s\n", d.ThreatType)
	}
	if d.UserAction != nil {
		fmt.Fprintf(w, "Your action: %s\n", *d.UserAction)
	}
	fmt.Fprintf(w, "Message:\n%s\n", d.InputText)
}

func printHistory(w io.Writer, results []models.ScanResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No scans yet.")
		return
	}
	for _, r := range results {
		verdict := "safe"
		if r.ThreatDetected {
			verdict = "threat"
		}
		fmt.Fprintf(w, "%s  %-6s  %3d/100  %-8s  %s\n",
			formatTime(r.Timestamp.Time), verdict, r.DetectionScore, r.Severity, r.ScanID)
	}
}

func printThreats(w io.Writer, threats []models.Threat) {
	if len(threats) == 0 {
		fmt.Fprintln(w, "No threats found.")
		return
	}
	for _, t := range threats {
		fmt.Fprintf(w, "⚠️ %s [%s] %s\n", t.Type, t.Category, t.Severity)
		if t.Description != "" {
			fmt.Fprintf(w, "   %s\n", t.Description)
		}
	}
}

func printNationalStats(w io.Writer, s *models.NationalStats) {
	fmt.Fprintf(w, "National statistics (last %d days)\n", s.PeriodDays)
	fmt.Fprintf(w, "  Total scans:       %d\n", s.TotalScans)
	fmt.Fprintf(w, "  Threats detected:  %d\n", s.ThreatsDetected)
	fmt.Fprintf(w, "  Threat rate:       %g%%\n", s.ThreatPercentage)
	if len(s.ByContentType) > 0 {
		keys := make([]string, 0, len(s.ByContentType))
		for k := range s.ByContentType {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "  By content type:")
		for _, k := range keys {
			c := s.ByContentType[k]
			fmt.Fprintf(w, "    %-12s %d scans, %d threats\n", k, c.Total, c.Threats)
		}
	}
	if len(s.MostCommonThreats) == 0 {
		fmt.Fprintln(w, "  No threat data available yet")
		return
	}
	fmt.Fprintln(w, "  Most common threats:")
	for _, t := range s.MostCommonThreats {
		fmt.Fprintf(w, "    %s: %d detected\n", t.ThreatType, t.Count)
	}
}

func printTranscript(w io.Writer, entries []models.TranscriptEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No messages yet.")
		return
	}
	for _, e := range entries {
		who := "You"
		if e.Sender == models.RoleAssistant {
			who = "TuniGuard"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", formatTime(e.Timestamp), who, strings.TrimSpace(e.Text))
	}
}
