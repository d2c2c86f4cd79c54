package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/splittab/internal/split/domain"
	"github.com/louisbranch/splittab/internal/storage"
)

// PutItem upserts one item record.
func (s *Store) PutItem(ctx context.Context, item domain.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(item.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO items (id, session_id, name, unit_price, quantity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   unit_price = excluded.unit_price,
		   quantity = excluded.quantity`,
		item.ID,
		item.SessionID,
		item.Name,
		item.UnitPrice,
		item.Quantity,
		toMillis(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// GetItem returns one item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return domain.Item{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Item{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Item{}, fmt.Errorf("item id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, session_id, name, unit_price, quantity, created_at
		 FROM items
		 WHERE id = ?`,
		id,
	)
	var item domain.Item
	var createdAt int64
	if err := row.Scan(&item.ID, &item.SessionID, &item.Name, &item.UnitPrice, &item.Quantity, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, storage.ErrNotFound
		}
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	item.CreatedAt = fromMillis(createdAt)
	return item, nil
}

// ListItems returns every item of a session in creation order.
func (s *Store) ListItems(ctx context.Context, sessionID string) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, session_id, name, unit_price, quantity, created_at
		 FROM items
		 WHERE session_id = ?
		 ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var createdAt int64
		if err := rows.Scan(&item.ID, &item.SessionID, &item.Name, &item.UnitPrice, &item.Quantity, &createdAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.CreatedAt = fromMillis(createdAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// DeleteItem removes an item unless a claim on it still has a positive
// proportion. The guard and the delete run as one statement so a claim
// arriving between check and delete cannot slip through.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("item id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM items
		 WHERE id = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM claims WHERE item_id = ? AND proportion > 0
		   )`,
		id,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing was deleted: either the item is gone or a claim blocked it.
	row := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id = ?`, id)
	var found int
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return storage.ErrConflict
}
