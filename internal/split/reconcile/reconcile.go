// Package reconcile enforces the capacity invariant of a session: across all
// participants, the claimed proportions of any item sum to at most one, up to
// a small tolerance for floating point drift.
//
// Sessions converge through a change feed rather than through transactions.
// Replicas are eventually consistent: concurrent claim writes resolve per
// participant by last write applied, and each replica clamps its own
// participant's claims downward when the rest of the session has grown.
// Reads during convergence may observe sums briefly above one; clamping is
// how every replica returns to the invariant without coordination.
package reconcile

import (
	"math"
	"strconv"

	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/split/domain"
)

// Epsilon is the tolerance allowed on the capacity sum, absorbing float
// rounding from unit and fraction arithmetic.
const Epsilon = 1e-9

// RemainingCapacity returns the proportion of an item still unclaimed by
// everyone except excludeParticipantID. The result is never negative even
// when the other claims transiently oversubscribe the item.
func RemainingCapacity(claims []domain.Claim, itemID, excludeParticipantID string) float64 {
	var others float64
	for _, claim := range claims {
		if claim.ItemID != itemID || claim.ParticipantID == excludeParticipantID {
			continue
		}
		others += claim.Proportion
	}
	return math.Max(0, 1-others)
}

// MaxUnits returns the largest whole-unit claim that fits in the remaining
// capacity of an item with the given quantity.
func MaxUnits(quantity int, remaining float64) int {
	if quantity < 1 {
		return 0
	}
	return int(math.Floor(float64(quantity) * remaining))
}

// ValidateCapacity rejects a claim whose proportion exceeds what the other
// participants have left over, beyond the float tolerance.
func ValidateCapacity(claim domain.Claim, claims []domain.Claim) error {
	remaining := RemainingCapacity(claims, claim.ItemID, claim.ParticipantID)
	if claim.Proportion > remaining+Epsilon {
		return errors.WithMetadata(
			errors.CodeClaimExceedsCapacity,
			"claim exceeds the item's remaining capacity",
			map[string]string{"Remaining": strconv.FormatFloat(remaining, 'f', -1, 64)},
		)
	}
	return nil
}

// ClampSelf reduces a participant's own claim to the remaining capacity left
// by everyone else. It only ever clamps downward; a claim already within
// capacity is returned unchanged. The boolean reports whether a clamp
// happened, so callers know to write the adjusted claim back.
func ClampSelf(claim domain.Claim, claims []domain.Claim) (domain.Claim, bool) {
	remaining := RemainingCapacity(claims, claim.ItemID, claim.ParticipantID)
	if claim.Proportion <= remaining+Epsilon {
		return claim, false
	}
	claim.Proportion = remaining
	return claim, true
}

// EvenSplit builds percentage claims of 1/n for the participant across every
// item. The divisor must cover everyone present: n below participantCount is
// rejected, while a larger n leaves headroom for guests or a shared pool.
// The claims are not pre-clamped; replicas clamp on their own as usual.
func EvenSplit(participantID string, items []domain.Item, n, participantCount int) ([]domain.Claim, error) {
	if n < 1 || n < participantCount {
		return nil, errors.WithMetadata(
			errors.CodeEvenSplitInvalidCount,
			"split count must cover every participant",
			map[string]string{"Min": strconv.Itoa(participantCount)},
		)
	}

	claims := make([]domain.Claim, 0, len(items))
	for _, item := range items {
		claims = append(claims, domain.Claim{
			ParticipantID: participantID,
			ItemID:        item.ID,
			Proportion:    1 / float64(n),
			Method:        domain.MethodPercentage,
		})
	}
	return claims, nil
}
