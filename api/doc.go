// Package api provides the HTTP REST surface of the Sea Battle server.
//
// Endpoints:
//
// Session lifecycle:
//   - POST /api/sessions - Create a session and seat the host
//   - GET /api/sessions - List sessions (administrative view)
//   - POST /api/sessions/{id}/join - Seat the second player
//   - POST /api/sessions/{id}/rematch - Start a rematch of a finished game
//   - DELETE /api/sessions/{id} - Remove a session
//
// Setup phase:
//   - POST /api/sessions/{id}/ships - Place a ship
//   - DELETE /api/sessions/{id}/ships - Retract the ship covering a cell
//   - POST /api/sessions/{id}/auto-place - Randomize the whole fleet
//   - POST /api/sessions/{id}/ready - Lock the fleet in
//   - GET /api/sessions/{id}/preview - Ghost-render a candidate placement
//
// Battle phase:
//   - POST /api/sessions/{id}/attack - Fire at a cell
//   - POST /api/sessions/{id}/surrender - Concede the game
//
// Queries:
//   - GET /api/sessions/{id}/snapshot?player={pid} - Player-scoped view
//   - GET /api/modes - List game modes
//   - GET /health - Liveness check
//
// WebSocket:
//   - GET /ws?session={id}&player={pid} - Live snapshot push
//
// All endpoints accept and return JSON. Errors come back as
// {"error": "message"} with a status derived from the engine's error
// taxonomy: unknown sessions and players map to 404, rule conflicts
// (wrong phase, repeat shots, out-of-turn attacks) to 409, malformed
// placements and requests to 400.
//
// After every state-changing request the server pushes fresh snapshots
// to the session's WebSocket clients, one view per seat.
package api
