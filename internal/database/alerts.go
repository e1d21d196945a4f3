package database

import (
	"dexscreener-telegram-bot/internal/types"
	"fmt"
)

// UpsertAlert writes an alert record, replacing any previous row with the
// same alert id.
func (s *Store) UpsertAlert(alert types.Alert) error {
	query := `
	INSERT OR REPLACE INTO tracked_tokens
		(alert_id, chat_id, token_address, token_name, pair_address, base_price, market_cap, last_multiple)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	_, err := s.db.Exec(query,
		alert.AlertID, alert.ChatID, alert.TokenAddress, alert.TokenName,
		alert.PairAddress, alert.BasePrice, alert.MarketCap, alert.LastMultiple)
	if err != nil {
		return fmt.Errorf("failed to upsert alert %s: %w", alert.AlertID, err)
	}
	return nil
}

// DeleteAlert removes an alert row. Deleting an unknown id is not an error
// here; existence is checked against the in-memory store.
func (s *Store) DeleteAlert(alertID string) error {
	query := `DELETE FROM tracked_tokens WHERE alert_id = ?;`
	_, err := s.db.Exec(query, alertID)
	if err != nil {
		return fmt.Errorf("failed to delete alert %s: %w", alertID, err)
	}
	return nil
}

// UpdateLastMultiple persists a crossed threshold acknowledgment.
func (s *Store) UpdateLastMultiple(alertID string, lastMultiple int) error {
	query := `UPDATE tracked_tokens SET last_multiple = ? WHERE alert_id = ?;`
	_, err := s.db.Exec(query, lastMultiple, alertID)
	if err != nil {
		return fmt.Errorf("failed to update last multiple for alert %s: %w", alertID, err)
	}
	return nil
}

// GetAllAlerts fetches every alert row, used to rebuild the in-memory store
// on startup.
func (s *Store) GetAllAlerts() ([]types.Alert, error) {
	query := `
	SELECT alert_id, chat_id, token_address, token_name, pair_address, base_price, market_cap, last_multiple
	FROM tracked_tokens;`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var alert types.Alert
		if err := rows.Scan(&alert.AlertID, &alert.ChatID, &alert.TokenAddress, &alert.TokenName,
			&alert.PairAddress, &alert.BasePrice, &alert.MarketCap, &alert.LastMultiple); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// GetAlertsByChatID fetches all alert rows for a specific chat.
func (s *Store) GetAlertsByChatID(chatID int64) ([]types.Alert, error) {
	query := `
	SELECT alert_id, chat_id, token_address, token_name, pair_address, base_price, market_cap, last_multiple
	FROM tracked_tokens WHERE chat_id = ?;`

	rows, err := s.db.Query(query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for chat ID %d: %w", chatID, err)
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var alert types.Alert
		if err := rows.Scan(&alert.AlertID, &alert.ChatID, &alert.TokenAddress, &alert.TokenName,
			&alert.PairAddress, &alert.BasePrice, &alert.MarketCap, &alert.LastMultiple); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}
