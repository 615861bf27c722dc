// Package websocket pushes live game updates to connected players.
//
// Each connection is bound to one session and one player seat. After a
// state-changing request the API layer asks the hub to push snapshots;
// the hub renders one view per connected player, so a player never
// receives the opponent's board.
//
// Connections follow the standard gorilla read/write pump pattern with
// ping keepalives. Incoming client messages are ignored; all game
// actions go through the REST API.
package websocket
