package domain

import (
	"crypto/rand"
	"time"

	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/platform/id"
)

// DefaultTaxPercent is the tax fraction applied when a session doesn't set one.
const DefaultTaxPercent = 0.13

// sessionCodeAlphabet avoids ambiguous characters (0/O, 1/I/L).
const sessionCodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// sessionCodeLength is the length of the human-readable join code.
const sessionCodeLength = 6

// Session represents one shared bill. It is created once and immutable
// except for its tax fraction.
type Session struct {
	ID         string
	Code       string
	TaxPercent float64 // fraction of the subtotal, e.g. 0.13 for 13%
	CreatedAt  time.Time
}

// CreateSessionInput describes the fields needed to create a session.
type CreateSessionInput struct {
	TaxPercent float64
}

// CreateSession creates a session with a generated ID and join code.
func CreateSession(input CreateSessionInput, now func() time.Time, idGenerator func() (string, error)) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if input.TaxPercent < 0 {
		return Session{}, errors.New(errors.CodeSessionInvalidTax, "tax percent must not be negative")
	}

	sessionID, err := idGenerator()
	if err != nil {
		return Session{}, errors.Wrap(errors.CodeUnknown, "generate session id", err)
	}
	code, err := NewSessionCode()
	if err != nil {
		return Session{}, errors.Wrap(errors.CodeUnknown, "generate session code", err)
	}

	return Session{
		ID:         sessionID,
		Code:       code,
		TaxPercent: input.TaxPercent,
		CreatedAt:  now().UTC(),
	}, nil
}

// NewSessionCode generates a short human-readable join code.
func NewSessionCode() (string, error) {
	buf := make([]byte, sessionCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = sessionCodeAlphabet[int(b)%len(sessionCodeAlphabet)]
	}
	return string(buf), nil
}

// WithTaxPercent returns the session with an updated tax fraction.
func (s Session) WithTaxPercent(taxPercent float64) (Session, error) {
	if taxPercent < 0 {
		return Session{}, errors.New(errors.CodeSessionInvalidTax, "tax percent must not be negative")
	}
	s.TaxPercent = taxPercent
	return s, nil
}
