package feed

import (
	"sync"

	"github.com/louisbranch/splittab/internal/split/domain"
	"github.com/louisbranch/splittab/internal/split/reconcile"
)

// State describes where a replica is in its feed lifecycle.
type State string

const (
	StateDisconnected State = "disconnected"
	StateSubscribing  State = "subscribing"
	StateLive         State = "live"
)

// claimKey identifies a claim by its (participant, item) pair.
type claimKey struct {
	participantID string
	itemID        string
}

// Replica is one participant's local view of a session, kept current by
// folding feed events into snapshot state. Events apply idempotently by
// primary key, so duplicates and re-deliveries are harmless; for a given
// key the last event applied wins.
//
// When someone else's claim grows past what this participant's own claim
// still fits in, the replica clamps its own claim down and reports the new
// claim through the clamp callback so the caller can write it back.
type Replica struct {
	mu            sync.Mutex
	sessionID     string
	participantID string
	state         State

	items        []domain.Item
	participants map[string]domain.Participant
	claims       map[claimKey]domain.Claim

	onClamp func(domain.Claim)
}

// NewReplica creates a disconnected replica for one participant's view.
// onClamp, if set, receives this participant's claim after an automatic
// downward adjustment; it runs while the replica lock is held, so callers
// should hand the claim off rather than re-enter the replica.
func NewReplica(sessionID, participantID string, onClamp func(domain.Claim)) *Replica {
	return &Replica{
		sessionID:     sessionID,
		participantID: participantID,
		state:         StateDisconnected,
		participants:  make(map[string]domain.Participant),
		claims:        make(map[claimKey]domain.Claim),
		onClamp:       onClamp,
	}
}

// State returns the replica's lifecycle state.
func (r *Replica) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// StartSync marks the replica as loading its snapshot.
func (r *Replica) StartSync() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateSubscribing
}

// Seed installs a snapshot of current session state and marks the replica
// live. Events applied afterward move the view forward from the snapshot.
func (r *Replica) Seed(items []domain.Item, participants []domain.Participant, claims []domain.Claim) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append([]domain.Item(nil), items...)
	r.participants = make(map[string]domain.Participant, len(participants))
	for _, participant := range participants {
		r.participants[participant.ID] = participant
	}
	r.claims = make(map[claimKey]domain.Claim, len(claims))
	for _, claim := range claims {
		r.claims[claimKey{claim.ParticipantID, claim.ItemID}] = claim
	}
	r.state = StateLive
}

// Disconnect marks the replica disconnected. Its view stays readable but no
// longer tracks the session.
func (r *Replica) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateDisconnected
}

// Apply folds one feed event into the view. Events for other sessions,
// malformed events, and events arriving while not live are dropped.
func (r *Replica) Apply(event ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateLive || !event.Valid() || event.SessionID != r.sessionID {
		return
	}

	switch event.Entity {
	case EntityItem:
		r.applyItem(event)
	case EntityClaim:
		r.applyClaim(event)
	case EntityParticipant:
		r.applyParticipant(event)
	}
}

func (r *Replica) applyItem(event ChangeEvent) {
	item := *event.Item
	if event.Type == TypeDelete {
		for i := range r.items {
			if r.items[i].ID == item.ID {
				r.items = append(r.items[:i], r.items[i+1:]...)
				break
			}
		}
		for key := range r.claims {
			if key.itemID == item.ID {
				delete(r.claims, key)
			}
		}
		return
	}

	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			return
		}
	}
	r.items = append(r.items, item)
}

func (r *Replica) applyClaim(event ChangeEvent) {
	claim := *event.Claim
	key := claimKey{claim.ParticipantID, claim.ItemID}
	if event.Type == TypeDelete {
		delete(r.claims, key)
	} else {
		r.claims[key] = claim
	}

	if claim.ParticipantID != r.participantID {
		r.reconcileSelf(claim.ItemID)
	}
}

func (r *Replica) applyParticipant(event ChangeEvent) {
	participant := *event.Participant
	if event.Type == TypeDelete {
		delete(r.participants, participant.ID)
		return
	}
	r.participants[participant.ID] = participant
}

// reconcileSelf clamps this participant's claim on one item down to whatever
// the rest of the session left over.
func (r *Replica) reconcileSelf(itemID string) {
	key := claimKey{r.participantID, itemID}
	mine, ok := r.claims[key]
	if !ok || mine.Proportion == 0 {
		return
	}

	clamped, changed := reconcile.ClampSelf(mine, r.claimsLocked())
	if !changed {
		return
	}
	r.claims[key] = clamped
	if r.onClamp != nil {
		r.onClamp(clamped)
	}
}

func (r *Replica) claimsLocked() []domain.Claim {
	claims := make([]domain.Claim, 0, len(r.claims))
	for _, claim := range r.claims {
		claims = append(claims, claim)
	}
	return claims
}

// Items returns the view's items in their feed order.
func (r *Replica) Items() []domain.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Item(nil), r.items...)
}

// Claims returns every claim in the view.
func (r *Replica) Claims() []domain.Claim {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimsLocked()
}

// Claim returns this view's claim for one (participant, item) pair.
func (r *Replica) Claim(participantID, itemID string) (domain.Claim, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[claimKey{participantID, itemID}]
	return claim, ok
}

// Participants returns every participant in the view.
func (r *Replica) Participants() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	participants := make([]domain.Participant, 0, len(r.participants))
	for _, participant := range r.participants {
		participants = append(participants, participant)
	}
	return participants
}
