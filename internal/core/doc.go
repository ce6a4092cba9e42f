// Package core provides the application state of the pore log viewer.
//
// The parsing and table logic lives in package porelog and is stateless.
// This package adds what a running viewer needs around it: one session per
// browser, the sequencing of concurrent loads, a server-wide load limit,
// load history, and user-facing error messages. It is used by the web
// handlers and can be driven directly from tests.
//
// # Sessions
//
// A [Session] holds the current [porelog.View] of one viewer. Sessions are
// created with [Service.NewSession] or [Service.EnsureSession] and evicted by
// [Service.StartSessionSweeper] once idle for longer than the configured TTL.
//
// # Loads
//
// [Service.Load] runs the whole load sequence:
//
//  1. The session's generation is bumped; this load is now the latest
//  2. A slot is taken from the [LoadLimiter]
//  3. The file is read, decoded and transformed into a table
//  4. The outcome is applied only if no newer load or reset started
//     meanwhile; otherwise [ErrSuperseded] is returned
//  5. A [history.Entry] is recorded for every outcome
//
// A failed load that is still current leaves the session with the empty
// view and the error text in Session.LastError.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - FILE001-FILE005: File errors (size, JSON, read, missing, empty)
//   - LOAD001-LOAD002: Load sequencing (superseded, busy)
//   - SES001: Session not found
//   - RATE001: Rate limiting
//   - REQ001-REQ002: Request cancelled or timed out
//
// See error_messages.go for the full reference.
package core
