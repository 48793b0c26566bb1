package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for arrivals resources.
	uriScheme = "arrivals://"

	// HistoryURI addresses the stored history document.
	HistoryURI = uriScheme + "history"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         HistoryURI,
		Name:        "history",
		Description: "Every recorded item grouped by the day it was first seen, newest day first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleHistoryResource returns the stored document in its persisted form.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	history, err := s.ports.History.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	data, err := history.Encode()
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
