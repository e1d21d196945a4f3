package tracker

import (
	"context"
	"testing"
	"time"

	"dexscreener-telegram-bot/internal/types"

	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	chatID int64
	text   string
}

type stubNotifier struct {
	sent    []sentMessage
	sendErr error
}

func (n *stubNotifier) Notify(chatID int64, text string) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func newTestMonitor() (*Monitor, *Store, *stubRepo, *stubSource, *stubNotifier) {
	store := NewStore()
	repo := newStubRepo()
	source := newStubSource()
	notifier := &stubNotifier{}
	monitor := NewMonitor(store, repo, source, notifier, time.Minute)
	return monitor, store, repo, source, notifier
}

func seedAlert(store *Store, repo *stubRepo, alert types.Alert) {
	store.Insert(alert)
	repo.alerts[alert.AlertID] = alert
}

func baseAlert() types.Alert {
	return types.Alert{
		AlertID:      "abc12345",
		ChatID:       7,
		TokenAddress: "token-addr",
		TokenName:    "PumpCoin",
		PairAddress:  "pair-1",
		BasePrice:    1.0,
		MarketCap:    100000,
		LastMultiple: 1,
	}
}

func TestMonitor_NotifiesSingleStepOnLargeJump(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()
	seedAlert(store, repo, baseAlert())
	source.prices["pair-1"] = 5.3

	monitor.CheckAlerts(context.Background())

	// One pass reports only the next threshold, not every skipped one.
	require.Len(t, notifier.sent, 1)
	require.Equal(t, int64(7), notifier.sent[0].chatID)
	require.Contains(t, notifier.sent[0].text, "*2x*")

	alert, _ := store.Get("abc12345")
	require.Equal(t, 2, alert.LastMultiple)
	require.Equal(t, 2, repo.alerts["abc12345"].LastMultiple)
}

func TestMonitor_CatchesUpAcrossPasses(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()
	seedAlert(store, repo, baseAlert())
	source.prices["pair-1"] = 5.3

	for i := 0; i < 5; i++ {
		monitor.CheckAlerts(context.Background())
	}

	// 2x through 5x arrive one per pass; the fifth pass has nothing left.
	require.Len(t, notifier.sent, 4)
	require.Contains(t, notifier.sent[0].text, "*2x*")
	require.Contains(t, notifier.sent[3].text, "*5x*")

	alert, _ := store.Get("abc12345")
	require.Equal(t, 5, alert.LastMultiple)
}

func TestMonitor_CrossingScenario(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()
	seedAlert(store, repo, baseAlert())

	source.prices["pair-1"] = 1.50
	monitor.CheckAlerts(context.Background())
	require.Empty(t, notifier.sent)

	source.prices["pair-1"] = 2.10
	monitor.CheckAlerts(context.Background())
	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0].text, "*2x*")

	source.prices["pair-1"] = 2.05
	monitor.CheckAlerts(context.Background())
	require.Len(t, notifier.sent, 1)

	alert, _ := store.Get("abc12345")
	require.Equal(t, 2, alert.LastMultiple)
}

func TestMonitor_UnavailablePriceLeavesStateUntouched(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()
	seedAlert(store, repo, baseAlert())
	source.fetchErr = errStubDown

	for i := 0; i < 3; i++ {
		monitor.CheckAlerts(context.Background())
	}

	require.Empty(t, notifier.sent)
	alert, _ := store.Get("abc12345")
	require.Equal(t, 1, alert.LastMultiple)
	require.Equal(t, 1, repo.alerts["abc12345"].LastMultiple)
}

func TestMonitor_SendFailureIsRetriedNextPass(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()
	seedAlert(store, repo, baseAlert())
	source.prices["pair-1"] = 2.5

	notifier.sendErr = errStubDown
	monitor.CheckAlerts(context.Background())

	// Persist happens only after a successful send.
	alert, _ := store.Get("abc12345")
	require.Equal(t, 1, alert.LastMultiple)
	require.Equal(t, 1, repo.alerts["abc12345"].LastMultiple)

	notifier.sendErr = nil
	monitor.CheckAlerts(context.Background())

	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0].text, "*2x*")
	alert, _ = store.Get("abc12345")
	require.Equal(t, 2, alert.LastMultiple)
}

func TestMonitor_IsolatesFailingAlert(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()

	healthy := baseAlert()
	broken := baseAlert()
	broken.AlertID = "def67890"
	broken.ChatID = 8
	broken.PairAddress = "pair-2"
	seedAlert(store, repo, healthy)
	seedAlert(store, repo, broken)

	source.prices["pair-1"] = 2.5
	source.fetchErrs["pair-2"] = errStubDown

	monitor.CheckAlerts(context.Background())

	require.Len(t, notifier.sent, 1)
	require.Equal(t, int64(7), notifier.sent[0].chatID)

	alert, _ := store.Get("def67890")
	require.Equal(t, 1, alert.LastMultiple)
}

func TestMonitor_DeletedAlertDuringPassIsIgnored(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()
	seedAlert(store, repo, baseAlert())
	source.prices["pair-1"] = 2.5

	// An alert deleted before the pass starts is not scanned.
	store.Delete("abc12345")
	monitor.CheckAlerts(context.Background())

	require.Empty(t, notifier.sent)
	_, exists := store.Get("abc12345")
	require.False(t, exists)
}

type panickyNotifier struct {
	panicsLeft int
	sent       []sentMessage
}

func (n *panickyNotifier) Notify(chatID int64, text string) error {
	if n.panicsLeft > 0 {
		n.panicsLeft--
		panic("send blew up")
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func TestMonitor_PanicDuringPassReleasesScanMutex(t *testing.T) {
	monitor, store, repo, source, _ := newTestMonitor()
	notifier := &panickyNotifier{panicsLeft: 1}
	monitor.notifier = notifier
	seedAlert(store, repo, baseAlert())
	source.prices["pair-1"] = 2.5

	require.Panics(t, func() { monitor.runPass(context.Background()) })

	// The next pass must still be able to take the scan mutex and deliver
	// the alert the panicked pass dropped.
	done := make(chan struct{})
	go func() {
		monitor.runPass(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scan pass blocked on a mutex held by the panicked pass")
	}

	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0].text, "*2x*")

	alert, _ := store.Get("abc12345")
	require.Equal(t, 2, alert.LastMultiple)
}

func TestMonitor_MessageContent(t *testing.T) {
	monitor, store, repo, source, notifier := newTestMonitor()
	alert := baseAlert()
	alert.BasePrice = 0.0042
	seedAlert(store, repo, alert)
	source.prices["pair-1"] = 0.0091

	monitor.CheckAlerts(context.Background())

	require.Len(t, notifier.sent, 1)
	text := notifier.sent[0].text
	require.Contains(t, text, "PumpCoin")
	require.Contains(t, text, "*2x*")
	require.Contains(t, text, "0\\.0042")
	require.Contains(t, text, "0\\.0091")
}
