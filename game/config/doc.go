// Package config provides game-mode management for the Sea Battle server.
//
// Three modes ship built in: classic (8×8), fast (6×6), and full (10×10,
// traditional fleet). Operators can add custom modes by dropping JSON
// files into a mode directory; files are validated on load and cached.
//
// Usage:
//
//	manager, err := config.NewManager("modes")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mode, err := manager.LoadMode("classic")
//	modes, _ := manager.ListModes()
package config
