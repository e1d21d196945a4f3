package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dexscreener-telegram-bot/internal/types"
	"dexscreener-telegram-bot/lib/helpers"

	log "github.com/sirupsen/logrus"
)

// Notifier pushes an alert message to a chat.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Monitor is the perpetual polling loop. Every interval it snapshots the
// store, re-fetches each alert's price and notifies once per newly crossed
// integer multiple of the base price.
type Monitor struct {
	store    *Store
	repo     Repository
	source   PriceSource
	notifier Notifier
	interval time.Duration

	// processingMutex ensures only one scan pass runs at a time
	processingMutex sync.Mutex
}

func NewMonitor(store *Store, repo Repository, source PriceSource, notifier Notifier, interval time.Duration) *Monitor {
	return &Monitor{
		store:    store,
		repo:     repo,
		source:   source,
		notifier: notifier,
		interval: interval,
	}
}

// CheckAlerts runs one scan pass over a snapshot of all live alerts. Any
// single alert's fetch or send failure is logged and skipped; the pass never
// aborts because of one alert.
func (m *Monitor) CheckAlerts(ctx context.Context) {
	log.Println("🔄 Checking alerts...")

	for _, alert := range m.store.Snapshot() {
		currentPrice, _, err := m.source.FetchPrice(ctx, alert.PairAddress)
		if err != nil {
			log.Printf("⚠️ No price data for pair %s (alert %s), skipping this cycle\n", alert.PairAddress, alert.AlertID)
			continue
		}

		multiple := currentPrice / alert.BasePrice
		nextMultiple := alert.LastMultiple + 1
		if multiple < float64(nextMultiple) {
			continue
		}

		// One threshold per pass. A jump past several multiples is reported
		// incrementally on the following passes.
		message := formatAlertMessage(alert, nextMultiple, currentPrice)
		if err := m.notifier.Notify(alert.ChatID, message); err != nil {
			log.Printf("❌ Failed to send price alert for %s: %v\n", alert.AlertID, err)
			continue
		}
		log.Printf("✅ Price alert sent: alert %s reached %dx (chat %d)\n", alert.AlertID, nextMultiple, alert.ChatID)

		// Persisted only after a successful send. A crash between the two
		// drops at most this one acknowledgment; if the persist itself fails,
		// memory runs ahead of sqlite and a restart may repeat the threshold.
		m.store.SetLastMultiple(alert.AlertID, nextMultiple)
		if err := m.repo.UpdateLastMultiple(alert.AlertID, nextMultiple); err != nil {
			log.Printf("❌ Failed to persist multiple for alert %s: %v\n", alert.AlertID, err)
		}
	}

	log.Println("✅ Alert check completed.")
}

// Start launches the monitoring loop in the background. The loop has no
// terminal state; it stops only with the process.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("🔥 Panic recovered in alert monitor: %v. Restarting monitor in 10 seconds...\n", r)
				time.Sleep(10 * time.Second)
				m.Start(ctx)
			}
		}()

		for {
			m.runPass(ctx)
			time.Sleep(m.interval)
		}
	}()
	log.Println("🚀 Alert monitor started.")
}

// runPass serializes scan passes. The unlock is deferred so a panicking pass
// cannot leave the mutex held and wedge the restarted loop.
func (m *Monitor) runPass(ctx context.Context) {
	m.processingMutex.Lock()
	defer m.processingMutex.Unlock()
	m.CheckAlerts(ctx)
}

func formatAlertMessage(alert types.Alert, multiple int, currentPrice float64) string {
	return fmt.Sprintf(
		"🚀 *Price Alert\\!* 🚀\n"+
			"🪙 *%s* has reached *%dx* its base price\\!\n"+
			"💰 Base Price: $%s\n"+
			"💰 Current Price: $%s",
		helpers.EscapeMarkdownV2(alert.TokenName),
		multiple,
		helpers.FormatPriceFixed(alert.BasePrice),
		helpers.FormatPriceFixed(currentPrice),
	)
}
