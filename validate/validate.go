// Command validate checks game-mode JSON files before they are dropped
// into the server's mode directory. It verifies:
//   - JSON structure and required fields
//   - Grid size bounds and ship size limits
//   - The packing rule (fleet cells may not exceed half the grid)
//   - That the declared mode id matches the file name
//   - That auto-placement can actually lay the fleet out
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avolkov/seabattle/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

// validateModeFile loads and validates a single mode JSON file.
func validateModeFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
		Notes: []string{},
	}
	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fail("Failed to read file: %v", err)
		return result
	}

	var mode engine.ModeConfig
	if err := json.Unmarshal(data, &mode); err != nil {
		fail("Invalid JSON: %v", err)
		return result
	}

	if mode.ID == "" {
		fail("Missing mode id")
	}
	if mode.Name == "" {
		fail("Missing mode name")
	}

	wantID := strings.TrimSuffix(filepath.Base(filePath), ".json")
	if mode.ID != "" && mode.ID != wantID {
		fail("Mode id %q does not match file name %q", mode.ID, wantID)
	}

	if err := engine.ValidateModeConfig(&mode); err != nil {
		fail("%v", err)
	}

	// A mode can satisfy the packing rule and still be hopeless to lay
	// out with the no-touch rule; try the actual placer.
	if result.Valid {
		if _, _, err := engine.AutoPlaceFleet(&mode); err != nil {
			fail("Auto-placement failed: %v", err)
		}
	}

	if result.Valid {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", mode.Name))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Grid: %dx%d", mode.GridSize, mode.GridSize))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Ships: %v (%d cells)", mode.Ships, mode.TotalShipCells()))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Turn limit: %s", mode.TurnLimit()))
	}

	return result
}

// collectModeFiles resolves the CLI arguments into a list of JSON files.
// With no arguments it scans ./modes.
func collectModeFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"modes"}
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	return files, nil
}

func main() {
	files, err := collectModeFiles(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No mode files found")
		return
	}

	failed := 0
	for _, file := range files {
		result := validateModeFile(file)
		status := "OK"
		if !result.Valid {
			status = "INVALID"
			failed++
		}
		fmt.Printf("%s: %s\n", result.File, status)
		for _, note := range result.Notes {
			fmt.Printf("  %s\n", note)
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d mode files failed validation\n", failed, len(files))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d mode files are valid\n", len(files))
}
