package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestHandleHistoryResource(t *testing.T) {
	t.Run("returns stored document", func(t *testing.T) {
		s := newTestServer(t, &Ports{History: &mockHistoryService{history: sampleHistory()}})

		result, err := s.handleHistoryResource(context.Background(), makeReadResourceRequest(HistoryURI))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, HistoryURI, result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"allPlants":[{"date":"20240312"`)
		assert.Contains(t, result.Contents[0].Text, `PILEA <mini>`)

		decoded, err := domain.DecodeHistory([]byte(result.Contents[0].Text))
		require.NoError(t, err)
		assert.Equal(t, sampleHistory(), decoded)
	})

	t.Run("empty history", func(t *testing.T) {
		s := newTestServer(t, &Ports{})

		result, err := s.handleHistoryResource(context.Background(), makeReadResourceRequest(HistoryURI))
		require.NoError(t, err)
		assert.Equal(t, `{"allPlants":[],"recents":[]}`, result.Contents[0].Text)
	})

	t.Run("history error", func(t *testing.T) {
		s := newTestServer(t, &Ports{History: &mockHistoryService{err: errors.New("boom")}})

		_, err := s.handleHistoryResource(context.Background(), makeReadResourceRequest(HistoryURI))
		assert.Error(t, err)
	})
}
