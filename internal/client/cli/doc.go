// Package cli provides the interactive TuniGuard command-line client.
//
// App wires the session, scan, chat, catalog and report services into a
// read-eval-print loop over a single buffered reader. Two background
// watchers run while the loop is active: an online/offline probe against
// the health endpoint and a periodic refresh of national analytics.
//
// Commands available to everyone: help, threats, stats, exit.
// Before login: login, register, guest.
// After login: whoami, scan, show, history, chat, transcript, passwd,
// delete-account, refresh, export, logout.
//
// The loop is started via App.Run(ctx), which blocks until the user exits
// or ctx is cancelled.
package cli
