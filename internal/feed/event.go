// Package feed carries session changes between replicas. Every successful
// write publishes a ChangeEvent to the session's feed; subscribers fold the
// events into a local replica that converges on the store's state.
package feed

import (
	"github.com/louisbranch/splittab/internal/split/domain"
)

// Entity names the record kind a change event carries.
type Entity string

const (
	EntityItem        Entity = "item"
	EntityClaim       Entity = "claim"
	EntityParticipant Entity = "participant"
)

// Type names the mutation a change event describes.
type Type string

const (
	TypeInsert Type = "insert"
	TypeUpdate Type = "update"
	TypeDelete Type = "delete"
)

// ChangeEvent is one mutation of session state. Exactly one of the record
// pointers matching Entity is set; delete events carry the record's keys so
// subscribers know what to drop.
type ChangeEvent struct {
	SessionID   string
	Entity      Entity
	Type        Type
	Item        *domain.Item
	Claim       *domain.Claim
	Participant *domain.Participant
}

// Valid reports whether the event names a known mutation and carries the
// record its entity kind requires. Replicas drop invalid events.
func (e ChangeEvent) Valid() bool {
	if e.SessionID == "" {
		return false
	}
	switch e.Type {
	case TypeInsert, TypeUpdate, TypeDelete:
	default:
		return false
	}
	switch e.Entity {
	case EntityItem:
		return e.Item != nil && e.Item.ID != ""
	case EntityClaim:
		return e.Claim != nil && e.Claim.ParticipantID != "" && e.Claim.ItemID != ""
	case EntityParticipant:
		return e.Participant != nil && e.Participant.ID != ""
	}
	return false
}
