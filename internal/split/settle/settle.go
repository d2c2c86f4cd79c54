// Package settle computes what each participant owes and how much of the
// bill the whole session has covered. All functions are pure; callers pass
// the current items and claims and get numbers back.
package settle

import (
	"math"

	"github.com/louisbranch/splittab/internal/split/domain"
)

// Summary is one participant's final bill breakdown.
type Summary struct {
	Subtotal        float64
	Tax             float64
	Tip             float64
	Total           float64
	CoveragePercent int
}

// ParticipantSubtotal sums the participant's claimed share of every item.
// Claims with zero proportion contribute nothing.
func ParticipantSubtotal(participantID string, items []domain.Item, claims []domain.Claim) float64 {
	byID := make(map[string]domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var subtotal float64
	for _, claim := range claims {
		if claim.ParticipantID != participantID || claim.Proportion <= 0 {
			continue
		}
		item, ok := byID[claim.ItemID]
		if !ok {
			continue
		}
		subtotal += claim.ShareAmount(item)
	}
	return subtotal
}

// BillSubtotal is the full cost of every item line in the session.
func BillSubtotal(items []domain.Item) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

// CoveredSubtotal is the portion of the bill claimed by anyone. Claims are
// summed at face value, so a transiently oversubscribed item contributes more
// than its line total until the owners reconcile; only CoveragePercent caps
// the displayed number.
func CoveredSubtotal(items []domain.Item, claims []domain.Claim) float64 {
	byID := make(map[string]domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var covered float64
	for _, claim := range claims {
		if claim.Proportion <= 0 {
			continue
		}
		item, ok := byID[claim.ItemID]
		if !ok {
			continue
		}
		covered += claim.ShareAmount(item)
	}
	return covered
}

// CoveragePercent reports how much of the bill is claimed, as a rounded
// percentage capped at 100. An empty bill counts as zero coverage.
func CoveragePercent(items []domain.Item, claims []domain.Claim) int {
	bill := BillSubtotal(items)
	if bill == 0 {
		return 0
	}
	covered := CoveredSubtotal(items, claims)
	percent := int(math.Round(covered / bill * 100))
	return min(percent, 100)
}

// Line is one claimed item row in a participant's breakdown.
type Line struct {
	ItemID     string
	Name       string
	Proportion float64
	Amount     float64
}

// Lines returns the participant's claimed items in bill order. Zero-proportion
// claims carry no cost and are left out.
func Lines(participantID string, items []domain.Item, claims []domain.Claim) []Line {
	byItem := make(map[string]domain.Claim, len(claims))
	for _, claim := range claims {
		if claim.ParticipantID == participantID && claim.Proportion > 0 {
			byItem[claim.ItemID] = claim
		}
	}

	var lines []Line
	for _, item := range items {
		claim, ok := byItem[item.ID]
		if !ok {
			continue
		}
		lines = append(lines, Line{
			ItemID:     item.ID,
			Name:       item.Name,
			Proportion: claim.Proportion,
			Amount:     claim.ShareAmount(item),
		})
	}
	return lines
}

// SharePercent is the participant's rounded share of the bill subtotal. An
// empty bill means nobody holds a share.
func SharePercent(participantSubtotal, billSubtotal float64) int {
	if billSubtotal <= 0 {
		return 0
	}
	return int(math.Round(participantSubtotal / billSubtotal * 100))
}

// Summarize computes the participant's full breakdown. The session's tax is
// a fraction of the subtotal; the participant's tip is a percent of it.
func Summarize(participantID string, session domain.Session, participant domain.Participant, items []domain.Item, claims []domain.Claim) Summary {
	subtotal := ParticipantSubtotal(participantID, items, claims)
	tax := subtotal * session.TaxPercent
	tip := subtotal * participant.TipPercent / 100
	return Summary{
		Subtotal:        subtotal,
		Tax:             tax,
		Tip:             tip,
		Total:           subtotal + tax + tip,
		CoveragePercent: CoveragePercent(items, claims),
	}
}
