package database

import (
	"path/filepath"
	"testing"

	"dexscreener-telegram-bot/internal/types"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleAlert() types.Alert {
	return types.Alert{
		AlertID:      "abc12345",
		ChatID:       7,
		TokenAddress: "token-addr",
		TokenName:    "PumpCoin",
		PairAddress:  "pair-1",
		BasePrice:    0.0042,
		MarketCap:    420000,
		LastMultiple: 1,
	}
}

func TestStore_UpsertAndReload(t *testing.T) {
	store := openTestStore(t)

	alert := sampleAlert()
	require.NoError(t, store.UpsertAlert(alert))

	other := sampleAlert()
	other.AlertID = "def67890"
	other.ChatID = 8
	require.NoError(t, store.UpsertAlert(other))

	alerts, err := store.GetAllAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byID := map[string]types.Alert{}
	for _, a := range alerts {
		byID[a.AlertID] = a
	}
	require.Equal(t, alert, byID["abc12345"])
	require.Equal(t, other, byID["def67890"])
}

func TestStore_UpdateLastMultipleSurvivesReload(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertAlert(sampleAlert()))
	require.NoError(t, store.UpdateLastMultiple("abc12345", 3))

	alerts, err := store.GetAllAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, 3, alerts[0].LastMultiple)
}

func TestStore_DeleteAlert(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertAlert(sampleAlert()))
	require.NoError(t, store.DeleteAlert("abc12345"))

	alerts, err := store.GetAllAlerts()
	require.NoError(t, err)
	require.Empty(t, alerts)
}

func TestStore_GetAlertsByChatID(t *testing.T) {
	store := openTestStore(t)

	first := sampleAlert()
	second := sampleAlert()
	second.AlertID = "def67890"
	third := sampleAlert()
	third.AlertID = "ghi13579"
	third.ChatID = 8

	require.NoError(t, store.UpsertAlert(first))
	require.NoError(t, store.UpsertAlert(second))
	require.NoError(t, store.UpsertAlert(third))

	alerts, err := store.GetAlertsByChatID(7)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	alerts, err = store.GetAlertsByChatID(9)
	require.NoError(t, err)
	require.Empty(t, alerts)
}

func TestStore_MetricsRoundtrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveMetric("commands_processed", "", "", 42))
	value, err := store.GetMetric("commands_processed")
	require.NoError(t, err)
	require.Equal(t, 42.0, value)

	// Unknown metrics default to zero.
	value, err = store.GetMetric("missing_metric")
	require.NoError(t, err)
	require.Equal(t, 0.0, value)

	require.NoError(t, store.SaveMetric("messages_per_channel", "7", "Group", 5))
	require.NoError(t, store.SaveMetric("messages_per_channel", "8", "Other", 2))

	labeled, err := store.GetMetricsWithLabels("messages_per_channel")
	require.NoError(t, err)
	require.Equal(t, 5.0, labeled["7"]["Group"])
	require.Equal(t, 2.0, labeled["8"]["Other"])
}
