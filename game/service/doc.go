// Package service provides the business logic layer for the Sea Battle
// server.
//
// GameService is the transport-facing contract: every operation resolves
// a session through the registry, executes it under that game's lock,
// and returns a fresh per-player snapshot. Transports (REST, WebSocket
// push, MCP) render snapshots; they never touch game state directly.
//
// Architecture:
//
// The service layer sits between the transport layer and the game
// engine. The registry guards map membership, each game guards its own
// state, and the service holds no lock of its own, so operations on
// different sessions proceed in parallel.
//
// Usage:
//
//	registry := session.NewManager()
//	modes, _ := config.NewManager("")
//	svc := service.NewGameService(registry, modes)
//
//	created, err := svc.CreateSession(ctx, "classic", true, "", "Alice")
//	if err != nil {
//		log.Fatal(err)
//	}
//	joined, err := svc.JoinSession(ctx, created.Snapshot.ID, "", "Bob")
package service
