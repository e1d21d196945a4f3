package tracker

import (
	"sync"

	"dexscreener-telegram-bot/internal/types"
)

// Store holds all live alerts in memory, keyed by alert id. It is built once
// at startup from the durable mirror and shared by the command handlers and
// the monitor goroutine.
type Store struct {
	mu     sync.RWMutex
	alerts map[string]types.Alert
}

func NewStore() *Store {
	return &Store{alerts: make(map[string]types.Alert)}
}

// Load replaces the store contents, used on startup reload.
func (s *Store) Load(alerts []types.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = make(map[string]types.Alert, len(alerts))
	for _, alert := range alerts {
		s.alerts[alert.AlertID] = alert
	}
}

func (s *Store) Insert(alert types.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.AlertID] = alert
}

// Delete removes an alert and reports whether it existed.
func (s *Store) Delete(alertID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.alerts[alertID]
	delete(s.alerts, alertID)
	return exists
}

func (s *Store) Get(alertID string) (types.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, exists := s.alerts[alertID]
	return alert, exists
}

// SetLastMultiple advances the notified threshold for an alert. The value
// never goes backwards, and an alert deleted mid-pass is left alone.
func (s *Store) SetLastMultiple(alertID string, lastMultiple int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, exists := s.alerts[alertID]
	if !exists || lastMultiple <= alert.LastMultiple {
		return
	}
	alert.LastMultiple = lastMultiple
	s.alerts[alertID] = alert
}

// CountByChat returns the number of live alerts for a chat, used for the
// per-chat quota check.
func (s *Store) CountByChat(chatID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, alert := range s.alerts {
		if alert.ChatID == chatID {
			count++
		}
	}
	return count
}

func (s *Store) ByChat(chatID int64) []types.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var alerts []types.Alert
	for _, alert := range s.alerts {
		if alert.ChatID == chatID {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

// Snapshot copies all alerts so the monitor can iterate while handlers
// create and delete concurrently.
func (s *Store) Snapshot() []types.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := make([]types.Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		alerts = append(alerts, alert)
	}
	return alerts
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}
