package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/splittab/internal/platform/errors"
)

// Method describes how a participant expressed their claim on an item.
type Method string

const (
	// MethodUnits means the claim was chosen as a whole number of units.
	MethodUnits Method = "units"
	// MethodPercentage means the claim was chosen as a percentage of the line.
	MethodPercentage Method = "percentage"
)

// IsValid reports whether the method is one of the known values.
func (m Method) IsValid() bool {
	return m == MethodUnits || m == MethodPercentage
}

// PercentPresets are the quick-select percentage options offered to users.
var PercentPresets = []float64{25, 100.0 / 3, 50, 100}

// Claim is one participant's fractional stake in one item. At most one claim
// exists per (participant, item) pair; writes are upserts. A proportion of
// zero counts as "no claim" for capacity purposes but is still stored so the
// participant's last chosen method survives.
type Claim struct {
	ParticipantID string
	ItemID        string
	Proportion    float64
	Method        Method
	UpdatedAt     time.Time
}

// NewUnitsClaim builds a claim for selectedUnits out of quantity whole units.
func NewUnitsClaim(participantID, itemID string, selectedUnits, quantity int) (Claim, error) {
	if quantity < 1 {
		return Claim{}, errors.New(errors.CodeItemInvalidQuantity, "item quantity must be at least 1")
	}
	if selectedUnits < 0 || selectedUnits > quantity {
		return Claim{}, errors.WithMetadata(
			errors.CodeClaimInvalidUnits,
			"selected units out of range",
			map[string]string{"Max": strconv.Itoa(quantity)},
		)
	}
	return Claim{
		ParticipantID: participantID,
		ItemID:        itemID,
		Proportion:    float64(selectedUnits) / float64(quantity),
		Method:        MethodUnits,
	}, nil
}

// NewPercentageClaim builds a claim for percent of the item line.
func NewPercentageClaim(participantID, itemID string, percent float64) (Claim, error) {
	if percent < 0 || percent > 100 {
		return Claim{}, errors.New(errors.CodeClaimInvalidProportion, "percent must be between 0 and 100")
	}
	return Claim{
		ParticipantID: participantID,
		ItemID:        itemID,
		Proportion:    percent / 100,
		Method:        MethodPercentage,
	}, nil
}

// ValidateClaim checks the stored invariants of a claim record.
func ValidateClaim(claim Claim) error {
	if strings.TrimSpace(claim.ParticipantID) == "" || strings.TrimSpace(claim.ItemID) == "" {
		return errors.New(errors.CodeNotFound, "claim requires participant and item ids")
	}
	if !claim.Method.IsValid() {
		return errors.New(errors.CodeClaimInvalidMethod, "claim method must be units or percentage")
	}
	if claim.Proportion < 0 || claim.Proportion > 1 {
		return errors.New(errors.CodeClaimInvalidProportion, "claim proportion must be between 0 and 1")
	}
	return nil
}

// WithMethod re-tags the claim with a new method, keeping its proportion.
// Switching methods never changes what the participant owes until they pick
// a new value under the new method.
func (c Claim) WithMethod(method Method) (Claim, error) {
	if !method.IsValid() {
		return Claim{}, errors.New(errors.CodeClaimInvalidMethod, "claim method must be units or percentage")
	}
	c.Method = method
	return c, nil
}

// Units returns the whole-unit count implied by the claim's proportion for an
// item with the given quantity.
func (c Claim) Units(quantity int) int {
	if quantity < 1 {
		return 0
	}
	return int(math.Round(c.Proportion * float64(quantity)))
}

// ShareAmount returns the monetary share this claim represents of the item.
func (c Claim) ShareAmount(item Item) float64 {
	return c.Proportion * item.LineTotal()
}

// FloorCents floors an amount to the cent so the sum of displayed shares
// never exceeds the item's true total.
func FloorCents(amount float64) float64 {
	return math.Floor(amount*100) / 100
}

var fractionPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)\s*$`)

// ParsePercentInput parses free-form percentage input: either a decimal
// number ("25", "33.3") or a fraction "a/b" with b > 0 ("1/3" parses to
// 33.33...). The result is a non-negative percent; range checks against
// remaining capacity are the caller's concern.
func ParsePercentInput(raw string) (float64, error) {
	if match := fractionPattern.FindStringSubmatch(raw); match != nil {
		numerator, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, errors.Wrap(errors.CodeClaimInvalidPercentInput, "parse fraction numerator", err)
		}
		denominator, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			return 0, errors.Wrap(errors.CodeClaimInvalidPercentInput, "parse fraction denominator", err)
		}
		if denominator <= 0 {
			return 0, errors.New(errors.CodeClaimInvalidPercentInput, "fraction denominator must be positive")
		}
		return numerator / denominator * 100, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errors.Wrap(errors.CodeClaimInvalidPercentInput, "parse percent", err)
	}
	if value < 0 {
		return 0, errors.New(errors.CodeClaimInvalidPercentInput, "percent must not be negative")
	}
	return value, nil
}
