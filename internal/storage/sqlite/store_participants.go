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

// PutParticipant upserts one participant record.
func (s *Store) PutParticipant(ctx context.Context, participant domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(participant.ID) == "" {
		return fmt.Errorf("participant id is required")
	}
	if strings.TrimSpace(participant.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	var submittedAt sql.NullInt64
	if participant.SubmittedAt != nil {
		submittedAt = sql.NullInt64{Int64: toMillis(*participant.SubmittedAt), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO participants (id, session_id, name, tip_percent, submitted_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   tip_percent = excluded.tip_percent,
		   submitted_at = excluded.submitted_at`,
		participant.ID,
		participant.SessionID,
		participant.Name,
		participant.TipPercent,
		submittedAt,
		toMillis(participant.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put participant: %w", err)
	}
	return nil
}

// GetParticipant returns one participant by ID.
func (s *Store) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Participant{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Participant{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Participant{}, fmt.Errorf("participant id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, session_id, name, tip_percent, submitted_at, created_at
		 FROM participants
		 WHERE id = ?`,
		id,
	)
	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Participant{}, storage.ErrNotFound
		}
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return participant, nil
}

// ListParticipants returns every participant of a session in join order.
func (s *Store) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
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
		`SELECT id, session_id, name, tip_percent, submitted_at, created_at
		 FROM participants
		 WHERE session_id = ?
		 ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var participants []domain.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (domain.Participant, error) {
	var participant domain.Participant
	var submittedAt sql.NullInt64
	var createdAt int64
	if err := row.Scan(
		&participant.ID,
		&participant.SessionID,
		&participant.Name,
		&participant.TipPercent,
		&submittedAt,
		&createdAt,
	); err != nil {
		return domain.Participant{}, err
	}
	if submittedAt.Valid {
		value := fromMillis(submittedAt.Int64)
		participant.SubmittedAt = &value
	}
	participant.CreatedAt = fromMillis(createdAt)
	return participant, nil
}
