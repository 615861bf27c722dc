// Package session provides the concurrency-safe session registry for the
// Sea Battle server.
//
// Manager maps session ids to live games. Registry operations take the
// manager's own lock only; per-game mutations happen under each game's
// internal lock, so unrelated games never block each other.
//
// Session Identifiers:
//
// Sessions use 6-character codes drawn from an unambiguous uppercase
// alphabet, generated with crypto/rand. Lookups are case-insensitive so
// codes survive being typed from a phone.
//
// Sweeping:
//
// Expire removes stale sessions: lobbies that never attracted a second
// player within an hour, finished games older than an hour, and any
// session older than a day. Games actively in battle are never swept.
package session
