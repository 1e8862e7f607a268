// Package ops implements the snippet operations exposed by the CLI, the MCP
// server, and the web UI. Each operation validates its input, talks to the db
// layer, and returns a typed output struct.
package ops

// Pagination limits
const (
	DefaultListLimit   = 20
	MaxListLimit       = 100
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}
