package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/splittab/internal/split/domain"
	"github.com/louisbranch/splittab/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "splittab.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func seedSession(t *testing.T, store *Store, id, code string) domain.Session {
	t.Helper()

	session := domain.Session{
		ID:         id,
		Code:       code,
		TaxPercent: 0.13,
		CreatedAt:  time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}
	if err := store.PutSession(context.Background(), session); err != nil {
		t.Fatalf("PutSession: %v", err)
	}
	return session
}

func seedParticipant(t *testing.T, store *Store, id, sessionID, name string) domain.Participant {
	t.Helper()

	participant := domain.Participant{
		ID:        id,
		SessionID: sessionID,
		Name:      name,
		CreatedAt: time.Date(2026, 3, 14, 15, 1, 0, 0, time.UTC),
	}
	if err := store.PutParticipant(context.Background(), participant); err != nil {
		t.Fatalf("PutParticipant: %v", err)
	}
	return participant
}

func seedItem(t *testing.T, store *Store, id, sessionID string, createdAt time.Time) domain.Item {
	t.Helper()

	item := domain.Item{
		ID:        id,
		SessionID: sessionID,
		Name:      "Item " + id,
		UnitPrice: 10,
		Quantity:  2,
		CreatedAt: createdAt,
	}
	if err := store.PutItem(context.Background(), item); err != nil {
		t.Fatalf("PutItem: %v", err)
	}
	return item
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	session := seedSession(t, store, "s1", "ABC234")

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != session {
		t.Errorf("GetSession = %+v, want %+v", got, session)
	}

	byCode, err := store.GetSessionByCode(ctx, "ABC234")
	if err != nil {
		t.Fatalf("GetSessionByCode: %v", err)
	}
	if byCode.ID != "s1" {
		t.Errorf("GetSessionByCode ID = %q", byCode.ID)
	}

	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing session: err = %v, want ErrNotFound", err)
	}

	// Upsert updates the tax fraction, not identity fields.
	updated, _ := session.WithTaxPercent(0.15)
	if err := store.PutSession(ctx, updated); err != nil {
		t.Fatalf("PutSession update: %v", err)
	}
	got, err = store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.TaxPercent != 0.15 {
		t.Errorf("TaxPercent = %v, want 0.15", got.TaxPercent)
	}
}

func TestParticipantRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedSession(t, store, "s1", "ABC234")
	participant := seedParticipant(t, store, "p1", "s1", "Ana")

	got, err := store.GetParticipant(ctx, "p1")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if got.Name != "Ana" || got.SubmittedAt != nil {
		t.Errorf("GetParticipant = %+v", got)
	}

	submitted, err := participant.Submit(20, time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := store.PutParticipant(ctx, submitted); err != nil {
		t.Fatalf("PutParticipant submit: %v", err)
	}
	got, err = store.GetParticipant(ctx, "p1")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if got.TipPercent != 20 || got.SubmittedAt == nil {
		t.Errorf("after submit: %+v", got)
	}
}

func TestListParticipantsOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedSession(t, store, "s1", "ABC234")

	base := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	for i, id := range []string{"p3", "p1", "p2"} {
		participant := domain.Participant{
			ID:        id,
			SessionID: "s1",
			Name:      "P" + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutParticipant(ctx, participant); err != nil {
			t.Fatalf("PutParticipant: %v", err)
		}
	}

	participants, err := store.ListParticipants(ctx, "s1")
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	var ids []string
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	want := []string{"p3", "p1", "p2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestListItemsOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedSession(t, store, "s1", "ABC234")

	base := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	seedItem(t, store, "i2", "s1", base.Add(time.Minute))
	seedItem(t, store, "i1", "s1", base)
	// Same timestamp as i1; the ID breaks the tie.
	seedItem(t, store, "i0", "s1", base)

	items, err := store.ListItems(ctx, "s1")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	var ids []string
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	want := []string{"i0", "i1", "i2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestDeleteItemGuard(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedSession(t, store, "s1", "ABC234")
	seedParticipant(t, store, "p1", "s1", "Ana")
	item := seedItem(t, store, "i1", "s1", time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))

	claim := domain.Claim{
		ParticipantID: "p1",
		ItemID:        item.ID,
		Proportion:    0.5,
		Method:        domain.MethodPercentage,
		UpdatedAt:     time.Date(2026, 3, 14, 15, 5, 0, 0, time.UTC),
	}
	if err := store.UpsertClaim(ctx, claim); err != nil {
		t.Fatalf("UpsertClaim: %v", err)
	}

	if err := store.DeleteItem(ctx, item.ID); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("DeleteItem with active claim: err = %v, want ErrConflict", err)
	}

	// Releasing the claim unblocks the delete.
	claim.Proportion = 0
	if err := store.UpsertClaim(ctx, claim); err != nil {
		t.Fatalf("UpsertClaim release: %v", err)
	}
	if err := store.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem after release: %v", err)
	}

	if err := store.DeleteItem(ctx, item.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteItem twice: err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetItem(ctx, item.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetItem after delete: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteItemCascadesClaims(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedSession(t, store, "s1", "ABC234")
	seedParticipant(t, store, "p1", "s1", "Ana")
	item := seedItem(t, store, "i1", "s1", time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))

	claim := domain.Claim{
		ParticipantID: "p1",
		ItemID:        item.ID,
		Proportion:    0,
		Method:        domain.MethodUnits,
		UpdatedAt:     time.Date(2026, 3, 14, 15, 5, 0, 0, time.UTC),
	}
	if err := store.UpsertClaim(ctx, claim); err != nil {
		t.Fatalf("UpsertClaim: %v", err)
	}
	if err := store.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	claims, err := store.ListClaimsByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListClaimsByItem: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("claims after delete = %d, want 0", len(claims))
	}
}

func TestClaimUpsertByPairKey(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedSession(t, store, "s1", "ABC234")
	seedParticipant(t, store, "p1", "s1", "Ana")
	item := seedItem(t, store, "i1", "s1", time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))

	first := domain.Claim{
		ParticipantID: "p1",
		ItemID:        item.ID,
		Proportion:    0.5,
		Method:        domain.MethodUnits,
		UpdatedAt:     time.Date(2026, 3, 14, 15, 5, 0, 0, time.UTC),
	}
	if err := store.UpsertClaim(ctx, first); err != nil {
		t.Fatalf("UpsertClaim: %v", err)
	}

	second := first
	second.Proportion = 0.25
	second.Method = domain.MethodPercentage
	second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
	if err := store.UpsertClaim(ctx, second); err != nil {
		t.Fatalf("UpsertClaim update: %v", err)
	}

	got, err := store.GetClaim(ctx, "p1", item.ID)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if got.Proportion != 0.25 || got.Method != domain.MethodPercentage {
		t.Errorf("GetClaim = %+v, want updated claim", got)
	}

	claims, err := store.ListClaimsByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListClaimsByItem: %v", err)
	}
	if len(claims) != 1 {
		t.Errorf("claims = %d, want 1 after upsert", len(claims))
	}
}

func TestListClaimsBySession(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedSession(t, store, "s1", "ABC234")
	seedSession(t, store, "s2", "XYZ789")
	seedParticipant(t, store, "p1", "s1", "Ana")
	seedParticipant(t, store, "p2", "s2", "Bea")
	itemA := seedItem(t, store, "i1", "s1", time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	itemB := seedItem(t, store, "i2", "s2", time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))

	now := time.Date(2026, 3, 14, 15, 5, 0, 0, time.UTC)
	for _, claim := range []domain.Claim{
		{ParticipantID: "p1", ItemID: itemA.ID, Proportion: 0.5, Method: domain.MethodUnits, UpdatedAt: now},
		{ParticipantID: "p2", ItemID: itemB.ID, Proportion: 1, Method: domain.MethodPercentage, UpdatedAt: now},
	} {
		if err := store.UpsertClaim(ctx, claim); err != nil {
			t.Fatalf("UpsertClaim: %v", err)
		}
	}

	claims, err := store.ListClaimsBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("ListClaimsBySession: %v", err)
	}
	if len(claims) != 1 || claims[0].ItemID != itemA.ID {
		t.Errorf("ListClaimsBySession = %+v, want only s1 claims", claims)
	}
}
