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

// PutSession upserts one session record.
func (s *Store) PutSession(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(session.Code) == "" {
		return fmt.Errorf("session code is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sessions (id, code, tax_percent, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   tax_percent = excluded.tax_percent`,
		session.ID,
		session.Code,
		session.TaxPercent,
		toMillis(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession returns one session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	return s.getSession(ctx, `SELECT id, code, tax_percent, created_at FROM sessions WHERE id = ?`, id)
}

// GetSessionByCode returns one session by its join code.
func (s *Store) GetSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	return s.getSession(ctx, `SELECT id, code, tax_percent, created_at FROM sessions WHERE code = ?`, code)
}

func (s *Store) getSession(ctx context.Context, query, key string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Session{}, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Session{}, fmt.Errorf("session key is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, query, key)
	var session domain.Session
	var createdAt int64
	if err := row.Scan(&session.ID, &session.Code, &session.TaxPercent, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, storage.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	session.CreatedAt = fromMillis(createdAt)
	return session, nil
}
