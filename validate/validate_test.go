package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeModeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write mode file: %v", err)
	}
	return path
}

func hasNote(result ValidationResult, fragment string) bool {
	for _, note := range result.Notes {
		if strings.Contains(note, fragment) {
			return true
		}
	}
	return false
}

func TestValidateModeFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeModeFile(t, dir, "duel.json", `{
		"id": "duel",
		"name": "Duel",
		"grid_size": 6,
		"ships": [3, 2, 1],
		"turn_limit_seconds": 60
	}`)

	result := validateModeFile(path)
	if !result.Valid {
		t.Fatalf("Expected valid mode, got errors: %v", result.Notes)
	}
	if !hasNote(result, "Grid: 6x6") {
		t.Errorf("Expected grid note, got: %v", result.Notes)
	}
}

func TestValidateModeFile_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeModeFile(t, dir, "broken.json", `{"id": "broken", nope}`)

	result := validateModeFile(path)
	if result.Valid {
		t.Error("Expected invalid result for bad JSON")
	}
	if !hasNote(result, "Invalid JSON") {
		t.Errorf("Expected 'Invalid JSON' error, got: %v", result.Notes)
	}
}

func TestValidateModeFile_MissingFile(t *testing.T) {
	result := validateModeFile("/non/existent/mode.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasNote(result, "Failed to read file") {
		t.Errorf("Expected read error, got: %v", result.Notes)
	}
}

func TestValidateModeFile_IDMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeModeFile(t, dir, "duel.json", `{
		"id": "other",
		"name": "Duel",
		"grid_size": 6,
		"ships": [2, 1],
		"turn_limit_seconds": 60
	}`)

	result := validateModeFile(path)
	if result.Valid {
		t.Error("Expected invalid result for id mismatch")
	}
	if !hasNote(result, "does not match file name") {
		t.Errorf("Expected id mismatch error, got: %v", result.Notes)
	}
}

func TestValidateModeFile_Overpacked(t *testing.T) {
	dir := t.TempDir()
	path := writeModeFile(t, dir, "packed.json", `{
		"id": "packed",
		"name": "Packed",
		"grid_size": 4,
		"ships": [4, 4, 4],
		"turn_limit_seconds": 60
	}`)

	result := validateModeFile(path)
	if result.Valid {
		t.Errorf("Expected overpacked mode to fail, got: %v", result.Notes)
	}
}

func TestCollectModeFiles(t *testing.T) {
	dir := t.TempDir()
	writeModeFile(t, dir, "a.json", `{}`)
	writeModeFile(t, dir, "b.json", `{}`)
	writeModeFile(t, dir, "notes.txt", "ignored")

	files, err := collectModeFiles([]string{dir})
	if err != nil {
		t.Fatalf("collectModeFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 json files, got %d: %v", len(files), files)
	}

	if _, err := collectModeFiles([]string{"/does/not/exist"}); err == nil {
		t.Error("Expected error for missing directory")
	}
}
