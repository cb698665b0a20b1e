// Package client contains the transport layer of the TuniGuard CLI.
//
// # Overview
//
//  1. The Client interface describes the HTTP/JSON API under /api/:
//     authentication, profile changes, scans, chat, the threat catalog,
//     national analytics and the health probe.
//  2. HTTPClient implements it over net/http. Every request carries an
//     X-Request-ID and, for authenticated operations, the bearer token
//     passed by the caller. Nothing is retried.
//  3. InitDatabase and RunMigrations bootstrap the local SQLite store with
//     embedded goose migrations.
//  4. TokenExpiry reads the exp claim of an access token so the session
//     layer can refresh it before a call.
//
// # Error Handling
//
// A request fails in one of two ways:
//
//   - *TransportError: the server could not be reached, or its success body
//     was unreadable. Matches ErrUnavailable.
//   - *APIError: a non-2xx response. Message is the server's "error" field
//     or the fallback for the operation. 401/403 match ErrUnauthorized.
package client
