package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
	})

	t.Run("missing reconciler returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{History: &mockHistoryService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingReconciler)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Reconciler: &mockReconciler{},
			History:    &mockHistoryService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports returns error", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingReconciler)
	})

	t.Run("missing history returns error", func(t *testing.T) {
		ports := &Ports{Reconciler: &mockReconciler{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingHistoryService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Reconciler: &mockReconciler{},
			History:    &mockHistoryService{},
			Snapshot:   &recordingObserver{},
		}
		assert.NoError(t, ports.Validate())
	})
}
