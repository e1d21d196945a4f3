package tracker

import (
	"context"
	"strings"

	"dexscreener-telegram-bot/internal/types"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MaxAlertsPerChat caps live alerts per chat.
const MaxAlertsPerChat = 10

var (
	ErrQuotaExceeded    = errors.New("chat already holds the maximum number of alerts")
	ErrAlertNotFound    = errors.New("alert id not found")
	ErrPairNotFound     = errors.New("no trading pair found for token")
	ErrPriceUnavailable = errors.New("price unavailable for pair")
)

// PriceSource resolves tokens to trading pairs and fetches live prices.
type PriceSource interface {
	ResolvePair(ctx context.Context, tokenAddress string) (pairAddress, tokenName string, err error)
	FetchPrice(ctx context.Context, pairAddress string) (priceUSD, marketCap float64, err error)
}

// Repository mirrors alert mutations to durable storage.
type Repository interface {
	UpsertAlert(alert types.Alert) error
	DeleteAlert(alertID string) error
	UpdateLastMultiple(alertID string, lastMultiple int) error
	GetAllAlerts() ([]types.Alert, error)
}

// Tracker manages the alert lifecycle: create with baseline capture, delete,
// and list with live recomputation.
type Tracker struct {
	store  *Store
	repo   Repository
	source PriceSource
}

func New(store *Store, repo Repository, source PriceSource) *Tracker {
	return &Tracker{store: store, repo: repo, source: source}
}

// Load rebuilds the in-memory store from durable storage. Must complete
// before the monitor is armed.
func (t *Tracker) Load() error {
	alerts, err := t.repo.GetAllAlerts()
	if err != nil {
		return errors.Wrap(err, "could not reload alerts")
	}
	t.store.Load(alerts)
	log.Debugf("loaded %d alerts from storage", len(alerts))
	return nil
}

// Create resolves the token to a pair, records the baseline price and market
// cap, and persists a new alert with last multiple 1.
func (t *Tracker) Create(ctx context.Context, chatID int64, tokenAddress string) (types.Alert, error) {
	if t.store.CountByChat(chatID) >= MaxAlertsPerChat {
		return types.Alert{}, ErrQuotaExceeded
	}

	pairAddress, tokenName, err := t.source.ResolvePair(ctx, tokenAddress)
	if err != nil {
		log.Debugf("pair resolution failed for token %s: %v", tokenAddress, err)
		return types.Alert{}, ErrPairNotFound
	}

	basePrice, marketCap, err := t.source.FetchPrice(ctx, pairAddress)
	if err != nil {
		log.Debugf("baseline price fetch failed for pair %s: %v", pairAddress, err)
		return types.Alert{}, ErrPriceUnavailable
	}

	alert := types.Alert{
		AlertID:      t.newAlertID(),
		ChatID:       chatID,
		TokenAddress: tokenAddress,
		TokenName:    tokenName,
		PairAddress:  pairAddress,
		BasePrice:    basePrice,
		MarketCap:    marketCap,
		LastMultiple: 1,
	}

	if err := t.repo.UpsertAlert(alert); err != nil {
		return types.Alert{}, errors.Wrap(err, "could not persist alert")
	}
	t.store.Insert(alert)

	log.Debugf("tracking started: alert %s, chat %d, token %s, base price %f",
		alert.AlertID, chatID, tokenAddress, basePrice)
	return alert, nil
}

// Delete removes an alert from memory and durable storage. A second delete
// of the same id reports ErrAlertNotFound.
func (t *Tracker) Delete(alertID string) error {
	if _, exists := t.store.Get(alertID); !exists {
		return ErrAlertNotFound
	}
	if err := t.repo.DeleteAlert(alertID); err != nil {
		return errors.Wrap(err, "could not delete alert")
	}
	t.store.Delete(alertID)
	return nil
}

// ListEntry is one alert with its display state recomputed from a live
// fetch. Available is false when the fetch failed; the stale fields are
// zero in that case.
type ListEntry struct {
	Alert            types.Alert
	CurrentPrice     float64
	CurrentMarketCap float64
	CurrentMultiple  float64
	Available        bool
}

// List returns all live alerts for a chat with current price, market cap and
// multiple. A failed fetch marks the entry unavailable instead of aborting.
func (t *Tracker) List(ctx context.Context, chatID int64) []ListEntry {
	alerts := t.store.ByChat(chatID)

	entries := make([]ListEntry, 0, len(alerts))
	for _, alert := range alerts {
		entry := ListEntry{Alert: alert}

		price, marketCap, err := t.source.FetchPrice(ctx, alert.PairAddress)
		if err == nil {
			entry.CurrentPrice = price
			entry.CurrentMarketCap = marketCap
			entry.CurrentMultiple = price / alert.BasePrice
			entry.Available = true
		}
		entries = append(entries, entry)
	}
	return entries
}

// newAlertID generates a short unique id. Eight hex chars of a v4 uuid, with
// a collision re-roll against the live set.
func (t *Tracker) newAlertID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if _, exists := t.store.Get(id); !exists {
			return id
		}
	}
}
