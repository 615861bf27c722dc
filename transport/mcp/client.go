package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/avolkov/seabattle/game/engine"
	"github.com/avolkov/seabattle/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sea Battle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sea Battle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Sink the opponent's whole fleet before they sink yours. Ships are
placed on a square grid and may never touch, not even diagonally.

TYPICAL FLOW:
1. create_session (you become the host, keep your player_id)
2. A second player calls join_session with the session id
3. Both players place ships (place_ship or auto_place) and set_ready
4. Take turns with attack; a hit grants another shot
5. game_state shows your board, your shots, and whose turn it is

AVAILABLE TOOLS:
- create_session: Create a new game session
- join_session: Join an existing session as the second player
- list_sessions: List all active sessions
- list_modes: List available game modes
- place_ship: Place one ship during setup
- auto_place: Randomize your whole fleet
- set_ready: Lock your fleet in
- attack: Fire at a cell on the opponent's grid
- surrender: Concede the game
- rematch: Start a fresh game with the same opponent
- game_state: Get your view of the session
- game_instructions: Get the full rules

Keep your player_id from create_session/join_session; every other tool
needs it.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionProp := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
	playerProp := map[string]interface{}{
		"type":        "string",
		"description": "Your player ID",
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session and take the host seat",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Game mode id (classic, fast, full); defaults to classic",
				},
				"timed": map[string]interface{}{
					"type":        "boolean",
					"description": "Enforce per-turn time limits",
				},
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_session",
		Description: "Join an existing session as the second player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleJoinSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_modes",
		Description: "List available game modes with grid sizes and fleets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListModes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_ship",
		Description: "Place one ship on your board during setup",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_id":  playerProp,
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Ship length in cells",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the ship's bow (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the ship's bow (0-based)",
				},
				"horizontal": map[string]interface{}{
					"type":        "boolean",
					"description": "Extend right when true, down when false",
				},
			},
			Required: []string{"session_id", "player_id", "size", "row", "col"},
		},
	}, c.handlePlaceShip)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "auto_place",
		Description: "Replace your fleet with a random valid layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_id":  playerProp,
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleAutoPlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_ready",
		Description: "Lock your fleet in; the battle starts when both players are ready",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_id":  playerProp,
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleSetReady)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "attack",
		Description: "Fire at a cell on the opponent's grid. A hit grants another shot.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_id":  playerProp,
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Target row (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Target column (0-based)",
				},
			},
			Required: []string{"session_id", "player_id", "row", "col"},
		},
	}, c.handleAttack)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "surrender",
		Description: "Concede the game to your opponent",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_id":  playerProp,
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleSurrender)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rematch",
		Description: "Start a fresh game with the same opponent after the current one finishes",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_id":  playerProp,
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleRematch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get your view of the session: your board, your shots, and whose turn it is",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"player_id":  playerProp,
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the full game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func stringArg(request mcp.CallToolRequest, key string) string {
	args, _ := request.Params.Arguments.(map[string]interface{})
	v, _ := args[key].(string)
	return v
}

func intArg(request mcp.CallToolRequest, key string) int {
	args, _ := request.Params.Arguments.(map[string]interface{})
	v, _ := args[key].(float64)
	return int(v)
}

func boolArg(request mcp.CallToolRequest, key string) bool {
	args, _ := request.Params.Arguments.(map[string]interface{})
	v, _ := args[key].(bool)
	return v
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{
		"mode":        stringArg(request, "mode"),
		"timed":       boolArg(request, "timed"),
		"player_name": stringArg(request, "player_name"),
	}

	var seat service.SeatResult
	if err := c.apiCall("POST", "/api/sessions", body, &seat); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session %s (mode: %s)\nYour player_id: %s\n\nShare the session id so an opponent can join, then place your ships.\n\n%s",
		seat.Snapshot.ID, seat.Snapshot.Mode, seat.PlayerID, formatSnapshot(seat.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJoinSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]interface{}{
		"player_name": stringArg(request, "player_name"),
	}

	var seat service.SeatResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/join", sessionID), body, &seat); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined session %s\nYour player_id: %s\n\n%s",
		seat.Snapshot.ID, seat.PlayerID, formatSnapshot(seat.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		opponent := "waiting for opponent"
		if s.HasOpponent {
			opponent = "2 players"
		}
		fmt.Fprintf(&b, "- %s (mode: %s, phase: %s, %s, created %s)\n",
			s.ID, s.Mode, s.Phase, opponent, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListModes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var modes []engine.ModeConfig
	if err := c.apiCall("GET", "/api/modes", nil, &modes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Modes:\n\n")
	for _, m := range modes {
		fmt.Fprintf(&b, "- %s (%s): %dx%d grid, ships %v, %ds per turn when timed\n",
			m.ID, m.Name, m.GridSize, m.GridSize, m.Ships, m.TurnLimitSeconds)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handlePlaceShip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]interface{}{
		"player_id":  stringArg(request, "player_id"),
		"size":       intArg(request, "size"),
		"row":        intArg(request, "row"),
		"col":        intArg(request, "col"),
		"horizontal": boolArg(request, "horizontal"),
	}

	var snap engine.Snapshot
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/ships", sessionID), body, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Ship placed.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleAutoPlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]interface{}{"player_id": stringArg(request, "player_id")}

	var snap engine.Snapshot
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/auto-place", sessionID), body, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Fleet randomized.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleSetReady(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]interface{}{"player_id": stringArg(request, "player_id")}

	var snap engine.Snapshot
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/ready", sessionID), body, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := "Fleet locked in. Waiting for the opponent."
	if snap.Phase == engine.PhaseBattle {
		msg = "Both fleets ready, battle started!"
	}
	return mcp.NewToolResultText(msg + "\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleAttack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]interface{}{
		"player_id": stringArg(request, "player_id"),
		"row":       intArg(request, "row"),
		"col":       intArg(request, "col"),
	}

	var result service.AttackResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/attack", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAttackResult(&result)), nil
}

func (c *Client) handleSurrender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]interface{}{"player_id": stringArg(request, "player_id")}

	var snap engine.Snapshot
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/surrender", sessionID), body, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("You surrendered.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleRematch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	body := map[string]interface{}{"player_id": stringArg(request, "player_id")}

	var seat service.SeatResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/rematch", sessionID), body, &seat); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Rematch started in session %s. Place your ships.\n\n%s",
		seat.Snapshot.ID, formatSnapshot(seat.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	playerID := stringArg(request, "player_id")

	var snap engine.Snapshot
	path := fmt.Sprintf("/api/sessions/%s/snapshot?player=%s", sessionID, playerID)
	if err := c.apiCall("GET", path, nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Sea Battle - Complete Rules

OBJECTIVE:
Sink every ship in the opponent's fleet before they sink yours.

SETUP:
- Each player places the mode's fleet on their own grid.
- Ships are straight lines, horizontal or vertical.
- Ships may never touch another ship, not even diagonally: every cell
  around a ship must stay empty.
- Use place_ship for manual placement or auto_place for a random
  layout; auto_place discards anything placed before.
- set_ready locks your fleet. When both players are ready the battle
  starts and a random player gets the first turn.

BATTLE:
- On your turn, attack one cell of the opponent's grid.
- Hit: the cell is marked X and you shoot again.
- Miss: the cell is marked o and the turn passes.
- Sinking a ship marks its cells # and automatically reveals all
  neighboring cells as misses, since no other ship can be there.
- Repeating a shot or firing out of turn is rejected.

TIMED GAMES:
- With timed=true each turn has a deadline (per mode). Missing it
  forfeits the game.

BOARD LEGEND:
- . empty / unknown
- S your ship (never visible on the tracking board)
- X hit
- # sunk ship
- o miss
- * the opponent's last shot at your board

ENDINGS:
- Victory: all opponent ships sunk
- Surrender: a player concedes
- Timeout: a timed turn expires
After a game finishes, rematch starts a fresh session with the same
opponent and settings.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

var cellChars = map[engine.CellState]string{
	engine.CellEmpty: ".",
	engine.CellShip:  "S",
	engine.CellHit:   "X",
	engine.CellSunk:  "#",
	engine.CellMiss:  "o",
}

func formatGrid(grid [][]engine.CellState, lastShot *engine.ShotMark) string {
	var b strings.Builder
	b.WriteString("   ")
	for col := range grid {
		fmt.Fprintf(&b, "%2d", col)
	}
	b.WriteString("\n")
	for row, cells := range grid {
		fmt.Fprintf(&b, "%2d ", row)
		for col, cell := range cells {
			ch, ok := cellChars[cell]
			if !ok {
				ch = "?"
			}
			if lastShot != nil && lastShot.Row == row && lastShot.Col == col {
				ch = "*"
			}
			b.WriteString(" " + ch)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatRemaining(remaining map[int]int) string {
	sizes := make([]int, 0, len(remaining))
	for size := range remaining {
		sizes = append(sizes, size)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))

	parts := make([]string, 0, len(sizes))
	for _, size := range sizes {
		parts = append(parts, fmt.Sprintf("%dx size-%d", remaining[size], size))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s | Mode: %s | Phase: %s\n", snap.ID, snap.Mode, snap.Phase)

	switch snap.Phase {
	case engine.PhaseLobby:
		b.WriteString("Waiting for an opponent to join.\n")
	case engine.PhaseSetup:
		ready := "not ready"
		if snap.You.Ready {
			ready = "ready"
		}
		fmt.Fprintf(&b, "Setup: you are %s", ready)
		if snap.Opponent != nil {
			oready := "not ready"
			if snap.Opponent.Ready {
				oready = "ready"
			}
			fmt.Fprintf(&b, ", %s is %s", snap.Opponent.Name, oready)
		}
		b.WriteString("\n")
	case engine.PhaseBattle:
		if snap.Turn == snap.You.ID {
			b.WriteString("YOUR TURN")
		} else {
			b.WriteString("Opponent's turn")
		}
		if snap.Deadline != nil {
			fmt.Fprintf(&b, " (deadline %s)", snap.Deadline.Format("15:04:05"))
		}
		b.WriteString("\n")
	case engine.PhaseFinished:
		if snap.Winner == snap.You.ID {
			b.WriteString("GAME OVER - you won")
		} else {
			b.WriteString("GAME OVER - you lost")
		}
		if snap.EndCause != engine.CauseNone {
			fmt.Fprintf(&b, " (%s)", snap.EndCause)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nYour board:\n")
	b.WriteString(formatGrid(snap.You.Board, snap.You.LastShot))
	fmt.Fprintf(&b, "Your ships afloat: %s\n", formatRemaining(snap.You.ShipsRemaining))

	if snap.Opponent != nil {
		fmt.Fprintf(&b, "\nYour shots at %s:\n", snap.Opponent.Name)
		b.WriteString(formatGrid(snap.You.Tracking, nil))
		fmt.Fprintf(&b, "Enemy ships afloat: %s\n", formatRemaining(snap.Opponent.ShipsRemaining))
	}

	return b.String()
}

func formatAttackResult(result *service.AttackResult) string {
	var b strings.Builder

	o := result.Outcome
	switch {
	case o.AllSunk:
		fmt.Fprintf(&b, "HIT at (%d,%d) - fleet destroyed, YOU WIN!\n", o.Row, o.Col)
	case o.Sunk:
		fmt.Fprintf(&b, "HIT at (%d,%d) - ship of size %d SUNK! Shoot again.\n", o.Row, o.Col, o.ShipSize)
	case o.Hit:
		fmt.Fprintf(&b, "HIT at (%d,%d)! Shoot again.\n", o.Row, o.Col)
	default:
		fmt.Fprintf(&b, "Miss at (%d,%d). Opponent's turn.\n", o.Row, o.Col)
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.Snapshot))
	return b.String()
}
