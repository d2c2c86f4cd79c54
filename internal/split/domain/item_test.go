package domain

import (
	"math"
	"testing"
	"time"

	"github.com/louisbranch/splittab/internal/platform/errors"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
}

func staticID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func TestCreateItem(t *testing.T) {
	t.Parallel()

	item, err := CreateItem(CreateItemInput{
		SessionID: "session-1",
		Name:      "  Pad Thai  ",
		UnitPrice: 12.50,
		Quantity:  2,
	}, fixedNow, staticID("item-1"))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if item.ID != "item-1" {
		t.Errorf("ID = %q, want %q", item.ID, "item-1")
	}
	if item.Name != "Pad Thai" {
		t.Errorf("Name = %q, want trimmed name", item.Name)
	}
	if !item.CreatedAt.Equal(fixedNow()) {
		t.Errorf("CreatedAt = %v, want %v", item.CreatedAt, fixedNow())
	}
	if got := item.LineTotal(); math.Abs(got-25.0) > 1e-9 {
		t.Errorf("LineTotal = %v, want 25.0", got)
	}
}

func TestCreateItemValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input CreateItemInput
		code  errors.Code
	}{
		{
			name:  "empty name",
			input: CreateItemInput{SessionID: "s", Name: "   ", UnitPrice: 1, Quantity: 1},
			code:  errors.CodeItemNameEmpty,
		},
		{
			name:  "zero price",
			input: CreateItemInput{SessionID: "s", Name: "Soda", UnitPrice: 0, Quantity: 1},
			code:  errors.CodeItemInvalidPrice,
		},
		{
			name:  "negative price",
			input: CreateItemInput{SessionID: "s", Name: "Soda", UnitPrice: -2, Quantity: 1},
			code:  errors.CodeItemInvalidPrice,
		},
		{
			name:  "zero quantity",
			input: CreateItemInput{SessionID: "s", Name: "Soda", UnitPrice: 1.5, Quantity: 0},
			code:  errors.CodeItemInvalidQuantity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := CreateItem(tc.input, fixedNow, staticID("id"))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsCode(err, tc.code) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tc.code)
			}
		})
	}
}

func TestUpdateItem(t *testing.T) {
	t.Parallel()

	item := Item{
		ID:        "item-1",
		SessionID: "session-1",
		Name:      "Fries",
		UnitPrice: 4,
		Quantity:  1,
		CreatedAt: fixedNow(),
	}

	updated, err := UpdateItem(item, UpdateItemInput{Name: "Large Fries", UnitPrice: 5.25, Quantity: 3})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Name != "Large Fries" || updated.UnitPrice != 5.25 || updated.Quantity != 3 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.ID != item.ID || !updated.CreatedAt.Equal(item.CreatedAt) {
		t.Error("identity fields must not change on update")
	}

	if _, err := UpdateItem(item, UpdateItemInput{Name: "", UnitPrice: 5, Quantity: 1}); !errors.IsCode(err, errors.CodeItemNameEmpty) {
		t.Errorf("empty name: code = %v, want %v", errors.GetCode(err), errors.CodeItemNameEmpty)
	}
}
