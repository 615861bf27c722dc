package session

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/avolkov/seabattle/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Sweep policy. Battle-phase sessions with no outcome are exempt from
// every rule.
const (
	// LobbyRetention drops sessions whose second player never arrived.
	LobbyRetention = time.Hour
	// FinishedRetention keeps finished games queryable for result screens.
	FinishedRetention = time.Hour
	// MaxRetention caps the lifetime of any non-battle session.
	MaxRetention = 24 * time.Hour
)

// codeAlphabet omits look-alike characters (0/O, 1/I) so session codes
// are easy to relay.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// Manager is the session registry: a guarded id → game map with
// expiry sweeping. The registry lock covers only map membership;
// game state is protected by each game's own lock.
type Manager struct {
	games map[string]*engine.Game
	mu    sync.RWMutex
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{games: make(map[string]*engine.Game)}
}

// Create builds a new game session with a fresh id and registers it.
func (m *Manager) Create(mode *engine.ModeConfig, timed bool, hostID, hostName string) (*engine.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newIDLocked()
	game := engine.NewGame(id, mode, timed, hostID, hostName)
	m.games[id] = game
	return game, nil
}

// Insert registers an externally constructed game (rematches). Fails if
// the id is taken.
func (m *Manager) Insert(game *engine.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := normalize(game.ID())
	if _, exists := m.games[id]; exists {
		return ErrSessionAlreadyExists
	}
	m.games[id] = game
	return nil
}

// NewID reserves nothing; it just produces a fresh id that is unique at
// the time of the call. Pair with Insert.
func (m *Manager) NewID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.newIDLocked()
}

// newIDLocked generates a code not currently in use. The caller must
// hold at least a read lock.
func (m *Manager) newIDLocked() string {
	for {
		id := randomCode(codeLength)
		if _, exists := m.games[id]; !exists {
			return id
		}
	}
}

// Get retrieves a session by id, case-insensitively.
func (m *Manager) Get(id string) (*engine.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	game, exists := m.games[normalize(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return game, nil
}

// Remove deletes a session from the registry.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(id)
	if _, exists := m.games[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.games, key)
	return nil
}

// List returns all registered games.
func (m *Manager) List() []*engine.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*engine.Game, 0, len(m.games))
	for _, game := range m.games {
		result = append(result, game)
	}
	return result
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Expire sweeps stale sessions per the retention policy and returns how
// many were removed. Sessions in battle with no outcome yet are never
// swept, regardless of age.
func (m *Manager) Expire(now time.Time) int {
	// Collect candidates without holding the registry lock across the
	// per-game status calls.
	candidates := m.List()

	removed := 0
	for _, game := range candidates {
		if !sweepable(game.CurrentStatus(), now) {
			continue
		}
		if err := m.Remove(game.ID()); err == nil {
			removed++
		}
	}
	return removed
}

func sweepable(st engine.Status, now time.Time) bool {
	if st.Phase == engine.PhaseBattle {
		return false
	}
	age := now.Sub(st.CreatedAt)
	switch {
	case !st.HasOpponent && age >= LobbyRetention:
		return true
	case st.Phase == engine.PhaseFinished && now.Sub(st.LastActivityAt) >= FinishedRetention:
		return true
	case age >= MaxRetention:
		return true
	}
	return false
}

func normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// randomCode draws a code from the unambiguous alphabet using
// cryptographic randomness.
func randomCode(n int) string {
	buf := make([]byte, n)
	rand.Read(buf)
	code := make([]byte, n)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code)
}
