package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// ReconcileInput is the input schema for the reconcile tool.
type ReconcileInput struct{}

// ReconcileOutput is the output schema for the reconcile tool.
type ReconcileOutput struct {
	Date        string       `json:"date"`
	Headline    string       `json:"headline"`
	UpdateToday bool         `json:"update_today"`
	NewItems    []ItemOutput `json:"new_items"`
	Recents     []ItemOutput `json:"recents"`
	Written     bool         `json:"written"`
}

// RecentsInput is the input schema for the get_recents tool.
type RecentsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of items to return (default and maximum 5)"`
}

// RecentsOutput is the output schema for the get_recents tool.
type RecentsOutput struct {
	Recents      []ItemOutput `json:"recents"`
	Count        int          `json:"count"`
	UpdatedToday bool         `json:"updated_today"`
}

// ItemOutput represents one recorded item.
type ItemOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reconcile",
		Description: "Fetch the catalog, record items not seen before and return today's arrivals",
	}, s.handleReconcile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_recents",
		Description: "List the most recently discovered items, newest first",
	}, s.handleGetRecents)
}

// handleReconcile runs one reconcile cycle.
func (s *Server) handleReconcile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ReconcileInput,
) (*mcp.CallToolResult, ReconcileOutput, error) {
	result, err := s.ports.Reconciler.Reconcile(ctx, s.ports.Snapshot)
	if err != nil {
		return nil, ReconcileOutput{}, err
	}

	snap := domain.Snapshot{UpdateToday: result.UpdateToday, Recents: result.Recents}
	return nil, ReconcileOutput{
		Date:        result.Date,
		Headline:    snap.Headline(),
		UpdateToday: result.UpdateToday,
		NewItems:    toItemOutputs(result.NewItems),
		Recents:     toItemOutputs(result.Recents),
		Written:     result.Written,
	}, nil
}

// handleGetRecents returns the stored recents.
func (s *Server) handleGetRecents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentsInput,
) (*mcp.CallToolResult, RecentsOutput, error) {
	recents, err := s.ports.History.Recents(ctx)
	if err != nil {
		return nil, RecentsOutput{}, err
	}
	if input.Limit > 0 && input.Limit < len(recents) {
		recents = recents[:input.Limit]
	}

	updated, err := s.ports.History.UpdatedToday(ctx)
	if err != nil {
		return nil, RecentsOutput{}, err
	}

	return nil, RecentsOutput{
		Recents:      toItemOutputs(recents),
		Count:        len(recents),
		UpdatedToday: updated,
	}, nil
}

func toItemOutputs(items []domain.RecentItem) []ItemOutput {
	out := make([]ItemOutput, len(items))
	for i, item := range items {
		out[i] = ItemOutput{
			ID:          item.ID,
			Name:        item.Name,
			DisplayName: item.DisplayName(),
			URL:         item.URL,
		}
	}
	return out
}
