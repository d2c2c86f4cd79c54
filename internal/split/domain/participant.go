package domain

import (
	"strings"
	"time"

	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/platform/id"
)

// TipPresets are the quick-select tip options offered on the tax/tip step.
var TipPresets = []float64{15, 18, 20, 25}

// Participant represents one person splitting the bill. Participants join a
// session once and are never deleted while it runs. TipPercent and
// SubmittedAt are set once, when the participant finalizes the tax/tip step.
type Participant struct {
	ID          string
	SessionID   string
	Name        string
	TipPercent  float64
	SubmittedAt *time.Time // nil until the tax/tip step is submitted
	CreatedAt   time.Time
}

// Submitted reports whether the participant has finalized their tax/tip step.
func (p Participant) Submitted() bool {
	return p.SubmittedAt != nil
}

// CreateParticipantInput describes the fields needed to join a session.
type CreateParticipantInput struct {
	SessionID string
	Name      string
}

// CreateParticipant creates a participant with a generated ID and timestamps.
func CreateParticipant(input CreateParticipantInput, now func() time.Time, idGenerator func() (string, error)) (Participant, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.SessionID = strings.TrimSpace(input.SessionID)
	if input.SessionID == "" {
		return Participant{}, errors.New(errors.CodeNotFound, "session id is required")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Participant{}, errors.New(errors.CodeParticipantNameEmpty, "participant name is required")
	}

	participantID, err := idGenerator()
	if err != nil {
		return Participant{}, errors.Wrap(errors.CodeUnknown, "generate participant id", err)
	}

	return Participant{
		ID:        participantID,
		SessionID: input.SessionID,
		Name:      input.Name,
		CreatedAt: now().UTC(),
	}, nil
}

// Submit finalizes the participant's tax/tip step. It may happen once.
func (p Participant) Submit(tipPercent float64, now time.Time) (Participant, error) {
	if p.Submitted() {
		return Participant{}, errors.New(errors.CodeParticipantAlreadySubmitted, "tax/tip already submitted")
	}
	if tipPercent < 0 {
		return Participant{}, errors.New(errors.CodeParticipantInvalidTip, "tip percent must not be negative")
	}
	submittedAt := now.UTC()
	p.TipPercent = tipPercent
	p.SubmittedAt = &submittedAt
	return p, nil
}
