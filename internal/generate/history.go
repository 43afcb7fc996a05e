package generate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// HistoryItem is a lightweight record of past generation parameters,
// kept so a user can repeat a prior request.
type HistoryItem struct {
	ID                  int64
	EventType           string
	GuestCount          string
	Cuisine             string
	DietaryRestrictions []string
	CreatedAt           time.Time
}

// HistoryRepository persists generation history to SQLite.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(d *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: d}
}

// Record stores the parameters of a successful generation.
func (r *HistoryRepository) Record(ctx context.Context, req Request) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO generation_history (event_type, guest_count, cuisine, dietary_restrictions, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		req.EventType, req.GuestCount, req.Cuisine,
		strings.Join(req.DietaryRestrictions, ","), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read history item id: %w", err)
	}
	return id, nil
}

// ListRecent retrieves up to limit history items, newest first.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]HistoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, guest_count, cuisine, dietary_restrictions, created_at
		 FROM generation_history
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var items []HistoryItem
	for rows.Next() {
		var (
			item    HistoryItem
			dietary string
		)
		if err := rows.Scan(&item.ID, &item.EventType, &item.GuestCount, &item.Cuisine, &dietary, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history item: %w", err)
		}
		if dietary != "" {
			item.DietaryRestrictions = strings.Split(dietary, ",")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Clear removes all history items.
func (r *HistoryRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM generation_history`)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// TrimTo deletes everything but the newest keep items and returns how
// many were removed.
func (r *HistoryRepository) TrimTo(ctx context.Context, keep int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM generation_history
		 WHERE id NOT IN (
		     SELECT id FROM generation_history ORDER BY created_at DESC, id DESC LIMIT ?
		 )`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim history: %w", err)
	}
	return result.RowsAffected()
}
