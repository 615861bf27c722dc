// Package mcp exposes the Sea Battle server to MCP-speaking agents.
//
// The client is a thin proxy: every tool call turns into a REST request
// against the running API server, and the JSON response is rendered as
// text the agent can read, including ASCII boards. Game rules live
// entirely on the server side.
package mcp
