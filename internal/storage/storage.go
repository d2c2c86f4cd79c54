// Package storage defines persistence contracts for session state.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/splittab/internal/split/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates a write was rejected by a concurrent-state guard,
// such as deleting an item that still carries active claims.
var ErrConflict = errors.New("record conflict")

// SessionStore persists bill sessions.
type SessionStore interface {
	PutSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	GetSessionByCode(ctx context.Context, code string) (domain.Session, error)
}

// ParticipantStore persists session participants.
type ParticipantStore interface {
	PutParticipant(ctx context.Context, participant domain.Participant) error
	GetParticipant(ctx context.Context, id string) (domain.Participant, error)
	ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error)
}

// ItemStore persists bill items. ListItems returns items in creation order
// with the item ID as a tiebreaker so every reader sees the same ordering.
type ItemStore interface {
	PutItem(ctx context.Context, item domain.Item) error
	GetItem(ctx context.Context, id string) (domain.Item, error)
	ListItems(ctx context.Context, sessionID string) ([]domain.Item, error)
	// DeleteItem removes an item only while no claim on it has a positive
	// proportion. It returns ErrConflict when active claims exist and
	// ErrNotFound when the item is already gone.
	DeleteItem(ctx context.Context, id string) error
}

// ClaimStore persists claims keyed by (participant, item). Writes are
// upserts; the pair key makes duplicate claims impossible.
type ClaimStore interface {
	UpsertClaim(ctx context.Context, claim domain.Claim) error
	GetClaim(ctx context.Context, participantID, itemID string) (domain.Claim, error)
	ListClaimsBySession(ctx context.Context, sessionID string) ([]domain.Claim, error)
	ListClaimsByItem(ctx context.Context, itemID string) ([]domain.Claim, error)
}

// Store is the full persistence surface the split service depends on.
type Store interface {
	SessionStore
	ParticipantStore
	ItemStore
	ClaimStore
}
