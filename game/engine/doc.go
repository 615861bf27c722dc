// Package engine provides the core game logic for the Sea Battle server.
//
// The engine package implements the game mechanics including:
//   - Board representation and ship-placement validation
//   - Randomized fleet auto-placement with bounded retries
//   - Attack resolution (hit, miss, sink, safe-water marking)
//   - The session state machine (lobby, setup, battle, finished)
//   - Turn and per-turn deadline management for timed games
//
// Core Types:
//
// Game is the session state machine owning both players' boards and
// fleets. Every mutating operation takes the game's internal lock, so a
// *Game can be shared between concurrent transport handlers. Board holds
// one player's grid and answers placement-validity queries. ModeConfig
// describes a game mode (grid size, ship sizes, turn limit).
//
// Usage:
//
//	mode := engine.BuiltinModes()["classic"]
//	game := engine.NewGame("a1b2", mode, false, "p1", "Alice")
//
//	if err := game.Join("p2", "Bob"); err != nil {
//		log.Fatal(err)
//	}
//	if err := game.AutoPlace("p1"); err != nil {
//		log.Fatal(err)
//	}
//
// Game Rules:
//
// Each player places a fleet on a private N×N grid. Ships may never touch,
// not even diagonally. Players then alternate attacks on unknown cells of
// the opponent's grid; a hit grants an extra turn, sinking a ship marks
// all provably-empty neighbor cells as misses on both views, and the game
// ends when one fleet is fully sunk, a player surrenders, or (in timed
// games) the turn holder runs out of time.
package engine
