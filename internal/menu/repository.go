package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository is a database-backed repository for saved menus.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores a menu under the given title and returns its ID.
func (r *Repository) Save(ctx context.Context, title string, m Menu) (int64, error) {
	menuJSON, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal menu to JSON: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_menus (title, menu_json, saved_at) VALUES (?, ?, ?)`,
		title, string(menuJSON), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert saved menu: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read saved menu id: %w", err)
	}
	return id, nil
}

// Get retrieves a saved menu by its ID, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id int64) (*SavedMenu, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, menu_json, saved_at FROM saved_menus WHERE id = ?`, id)

	saved, err := scanSavedMenu(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saved menu %d: %w", id, err)
	}
	return saved, nil
}

// List retrieves all saved menus, newest first.
func (r *Repository) List(ctx context.Context) ([]SavedMenu, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, menu_json, saved_at FROM saved_menus ORDER BY saved_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved menus: %w", err)
	}
	defer rows.Close()

	var menus []SavedMenu
	for rows.Next() {
		saved, err := scanSavedMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved menu: %w", err)
		}
		menus = append(menus, *saved)
	}
	return menus, rows.Err()
}

// Delete removes a saved menu.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM saved_menus WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved menu %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedMenu(row rowScanner) (*SavedMenu, error) {
	var (
		saved    SavedMenu
		menuJSON string
	)
	if err := row.Scan(&saved.ID, &saved.Title, &menuJSON, &saved.SavedAt); err != nil {
		return nil, err
	}

	content, err := Normalize(menuJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored menu JSON: %w", err)
	}
	saved.Content = *content
	return &saved, nil
}
