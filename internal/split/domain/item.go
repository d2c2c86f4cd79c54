package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/platform/id"
)

// MinUnitPrice is the smallest unit price an item may carry, in currency units.
const MinUnitPrice = 0.01

// Item represents a priced line item on the shared bill. Items are owned
// collectively by the session: any participant may create, edit, or delete
// them, subject to the claim guard on deletion.
type Item struct {
	ID        string
	SessionID string
	Name      string
	UnitPrice float64
	Quantity  int
	CreatedAt time.Time
}

// LineTotal returns the full cost of the item line (unit price × quantity).
func (i Item) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// CreateItemInput describes the fields needed to create an item.
type CreateItemInput struct {
	SessionID string
	Name      string
	UnitPrice float64
	Quantity  int
}

// CreateItem creates a new item with a generated ID and creation timestamp.
func CreateItem(input CreateItemInput, now func() time.Time, idGenerator func() (string, error)) (Item, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateItemInput(input)
	if err != nil {
		return Item{}, err
	}

	itemID, err := idGenerator()
	if err != nil {
		return Item{}, errors.Wrap(errors.CodeUnknown, "generate item id", err)
	}

	return Item{
		ID:        itemID,
		SessionID: normalized.SessionID,
		Name:      normalized.Name,
		UnitPrice: normalized.UnitPrice,
		Quantity:  normalized.Quantity,
		CreatedAt: now().UTC(),
	}, nil
}

// NormalizeCreateItemInput trims and validates item input fields.
func NormalizeCreateItemInput(input CreateItemInput) (CreateItemInput, error) {
	input.SessionID = strings.TrimSpace(input.SessionID)
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateItemInput{}, errors.New(errors.CodeItemNameEmpty, "item name is required")
	}
	if input.UnitPrice < MinUnitPrice {
		return CreateItemInput{}, errors.WithMetadata(
			errors.CodeItemInvalidPrice,
			"item unit price must be at least 0.01",
			map[string]string{"Price": strconv.FormatFloat(input.UnitPrice, 'f', -1, 64)},
		)
	}
	if input.Quantity < 1 {
		return CreateItemInput{}, errors.WithMetadata(
			errors.CodeItemInvalidQuantity,
			"item quantity must be at least 1",
			map[string]string{"Quantity": strconv.Itoa(input.Quantity)},
		)
	}
	return input, nil
}

// UpdateItemInput describes the mutable fields of an item.
type UpdateItemInput struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// UpdateItem applies validated field updates to an existing item.
func UpdateItem(item Item, input UpdateItemInput) (Item, error) {
	normalized, err := NormalizeCreateItemInput(CreateItemInput{
		SessionID: item.SessionID,
		Name:      input.Name,
		UnitPrice: input.UnitPrice,
		Quantity:  input.Quantity,
	})
	if err != nil {
		return Item{}, err
	}
	item.Name = normalized.Name
	item.UnitPrice = normalized.UnitPrice
	item.Quantity = normalized.Quantity
	return item, nil
}
