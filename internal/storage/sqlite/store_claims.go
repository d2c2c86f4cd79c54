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

// UpsertClaim writes one claim keyed by (participant, item).
func (s *Store) UpsertClaim(ctx context.Context, claim domain.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(claim.ParticipantID) == "" {
		return fmt.Errorf("participant id is required")
	}
	if strings.TrimSpace(claim.ItemID) == "" {
		return fmt.Errorf("item id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO claims (participant_id, item_id, proportion, method, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(participant_id, item_id) DO UPDATE SET
		   proportion = excluded.proportion,
		   method = excluded.method,
		   updated_at = excluded.updated_at`,
		claim.ParticipantID,
		claim.ItemID,
		claim.Proportion,
		string(claim.Method),
		toMillis(claim.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert claim: %w", err)
	}
	return nil
}

// GetClaim returns the claim one participant holds on one item.
func (s *Store) GetClaim(ctx context.Context, participantID, itemID string) (domain.Claim, error) {
	if err := ctx.Err(); err != nil {
		return domain.Claim{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Claim{}, fmt.Errorf("storage is not configured")
	}
	participantID = strings.TrimSpace(participantID)
	itemID = strings.TrimSpace(itemID)
	if participantID == "" || itemID == "" {
		return domain.Claim{}, fmt.Errorf("participant id and item id are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT participant_id, item_id, proportion, method, updated_at
		 FROM claims
		 WHERE participant_id = ? AND item_id = ?`,
		participantID,
		itemID,
	)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Claim{}, storage.ErrNotFound
		}
		return domain.Claim{}, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

// ListClaimsBySession returns every claim on any item of the session.
func (s *Store) ListClaimsBySession(ctx context.Context, sessionID string) ([]domain.Claim, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return s.listClaims(
		ctx,
		`SELECT c.participant_id, c.item_id, c.proportion, c.method, c.updated_at
		 FROM claims c
		 JOIN items i ON i.id = c.item_id
		 WHERE i.session_id = ?
		 ORDER BY c.item_id ASC, c.participant_id ASC`,
		sessionID,
	)
}

// ListClaimsByItem returns every claim on one item.
func (s *Store) ListClaimsByItem(ctx context.Context, itemID string) ([]domain.Claim, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, fmt.Errorf("item id is required")
	}
	return s.listClaims(
		ctx,
		`SELECT participant_id, item_id, proportion, method, updated_at
		 FROM claims
		 WHERE item_id = ?
		 ORDER BY participant_id ASC`,
		itemID,
	)
}

func (s *Store) listClaims(ctx context.Context, query string, args ...any) ([]domain.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var claims []domain.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

func scanClaim(row rowScanner) (domain.Claim, error) {
	var claim domain.Claim
	var method string
	var updatedAt int64
	if err := row.Scan(&claim.ParticipantID, &claim.ItemID, &claim.Proportion, &method, &updatedAt); err != nil {
		return domain.Claim{}, err
	}
	claim.Method = domain.Method(method)
	claim.UpdatedAt = fromMillis(updatedAt)
	return claim, nil
}
