package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

func TestReconcileCmd_Use(t *testing.T) {
	assert.Equal(t, "reconcile", reconcileCmd.Use)
	assert.Contains(t, reconcileCmd.Long, "today's date")
}

func TestReconcileCmd_Text(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()

	out, err := executeCommand(t, "reconcile")

	require.NoError(t, err)
	assert.Contains(t, out, "Checking...")
	assert.Contains(t, out, domain.HeadlineUpdated)
	assert.Contains(t, out, "1 new item(s) recorded for 20240302")
	assert.Contains(t, out, "Recent arrivals:")
	assert.Contains(t, out, "1. String of pearls")
	assert.Contains(t, out, "https://shop.example.com/p3")
	assert.NotContains(t, out, "write skipped")
	assert.Equal(t, 1, ts.reconciler.calls)
}

func TestReconcileCmd_ForwardsToObserver(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()

	_, err := executeCommand(t, "reconcile")

	require.NoError(t, err)
	assert.Equal(t, []string{"start", "today", "database", "finish"}, ts.observer.events)
}

func TestReconcileCmd_NothingNew(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()
	ts.reconciler.result.NewItems = nil
	ts.reconciler.result.UpdateToday = false
	ts.reconciler.result.Written = false

	out, err := executeCommand(t, "reconcile")

	require.NoError(t, err)
	assert.Contains(t, out, domain.HeadlineNoUpdate)
	assert.NotContains(t, out, "recorded for")
	assert.Contains(t, out, "History unchanged, write skipped")
}

func TestReconcileCmd_JSON(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := executeCommand(t, "reconcile", "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "Checking...")

	var view cycleView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "20240302", view.Date)
	assert.True(t, view.UpdateToday)
	assert.True(t, view.Written)
	require.Len(t, view.NewItems, 1)
	assert.Equal(t, "String of pearls", view.NewItems[0].DisplayName)
	assert.Len(t, view.Recents, 3)
}

func TestReconcileCmd_YAML(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := executeCommand(t, "reconcile", "-f", "yaml")
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.Equal(t, "20240302", view["date"])
	assert.Equal(t, true, view["update_today"])
	assert.Len(t, view["recents"], 3)
}

func TestReconcileCmd_InvalidFormat(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()

	_, err := executeCommand(t, "reconcile", "--format", "xml")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, ts.reconciler.calls)
}

func TestReconcileCmd_Error(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()
	ts.reconciler.err = domain.ErrSourceFetch

	_, err := executeCommand(t, "reconcile")

	assert.ErrorIs(t, err, domain.ErrSourceFetch)
	assert.Contains(t, err.Error(), "reconcile failed")
}

func TestReconcileCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()
	Configure(Services{SetupErr: domain.ErrInvalidInput})

	_, err := executeCommand(t, "reconcile")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "not configured")
}

func TestReconcileCmd_NotConfiguredWithoutReason(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()
	Configure(Services{})

	_, err := executeCommand(t, "reconcile")

	assert.EqualError(t, err, "reconciler not configured")
}
