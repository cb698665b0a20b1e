// Package common contains constants shared by the TuniGuard client layers.
package common

const (
	// SessionNamespace is the record key of the persisted session.
	SessionNamespace = "tuniguard_user"

	// TranscriptNamespacePrefix prefixes the user id to form the logical
	// transcript key, e.g. chat_history_42.
	TranscriptNamespacePrefix = "chat_history_"

	// GuestUserID is the sentinel user id of a guest session.
	GuestUserID = "guest"

	// LocationHint is sent with every scan.
	LocationHint = "Tunisia"

	// MinPasswordLength applies to registration and password change.
	MinPasswordLength = 6

	// MaxScanContentLength and MaxChatMessageLength mirror the server limits.
	MaxScanContentLength = 5000
	MaxChatMessageLength = 1000

	// AuthorizationHeader carries the bearer token on outbound requests.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader tags each outbound request for log correlation.
	RequestIDHeader = "X-Request-ID"
)

// TranscriptNamespace returns the logical transcript key for userID.
func TranscriptNamespace(userID string) string {
	return TranscriptNamespacePrefix + userID
}
