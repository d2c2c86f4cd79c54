package service

import (
	"context"

	"github.com/louisbranch/splittab/internal/feed"
	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/split/domain"
	"github.com/louisbranch/splittab/internal/split/reconcile"
	"github.com/louisbranch/splittab/internal/split/settle"
)

// UpsertClaim writes a participant's claim after validating ownership, shape,
// and the item's remaining capacity. The actor may only write their own
// claims.
func (s *Service) UpsertClaim(ctx context.Context, actorID string, claim domain.Claim) (domain.Claim, error) {
	if actorID != claim.ParticipantID {
		return domain.Claim{}, errors.New(errors.CodeClaimNotOwned, "participants may only change their own claims")
	}
	if err := domain.ValidateClaim(claim); err != nil {
		return domain.Claim{}, err
	}

	item, err := s.getItem(ctx, claim.ItemID)
	if err != nil {
		return domain.Claim{}, err
	}

	existing, err := s.store.ListClaimsByItem(ctx, claim.ItemID)
	if err != nil {
		return domain.Claim{}, errors.Wrap(errors.CodeUnknown, "list claims", err)
	}
	if err := reconcile.ValidateCapacity(claim, existing); err != nil {
		return domain.Claim{}, err
	}

	claim.UpdatedAt = s.clock().UTC()
	if err := s.store.UpsertClaim(ctx, claim); err != nil {
		return domain.Claim{}, errors.Wrap(errors.CodeUnknown, "upsert claim", err)
	}

	s.publish(feed.ChangeEvent{
		SessionID: item.SessionID,
		Entity:    feed.EntityClaim,
		Type:      feed.TypeUpdate,
		Claim:     &claim,
	})
	return claim, nil
}

// ClaimRest claims whatever proportion of the item is still unclaimed by the
// other participants. Claiming the rest of a fully claimed item stores a zero
// proportion, which releases any previous claim.
func (s *Service) ClaimRest(ctx context.Context, actorID, itemID string) (domain.Claim, error) {
	existing, err := s.store.ListClaimsByItem(ctx, itemID)
	if err != nil {
		return domain.Claim{}, errors.Wrap(errors.CodeUnknown, "list claims", err)
	}
	remaining := reconcile.RemainingCapacity(existing, itemID, actorID)
	claim, err := domain.NewPercentageClaim(actorID, itemID, remaining*100)
	if err != nil {
		return domain.Claim{}, err
	}
	return s.UpsertClaim(ctx, actorID, claim)
}

// ApplyEvenSplit writes 1/n percentage claims for the actor across every
// item of the session. Claims that exceed remaining capacity are clamped on
// write, matching what every replica would do on receipt.
func (s *Service) ApplyEvenSplit(ctx context.Context, actorID, sessionID string, n int) ([]domain.Claim, error) {
	participant, err := s.getParticipant(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if participant.SessionID != sessionID {
		return nil, errors.New(errors.CodeClaimNotOwned, "participant does not belong to this session")
	}

	items, err := s.store.ListItems(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "list items", err)
	}
	participants, err := s.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "list participants", err)
	}

	claims, err := reconcile.EvenSplit(actorID, items, n, len(participants))
	if err != nil {
		return nil, err
	}

	written := make([]domain.Claim, 0, len(claims))
	for _, claim := range claims {
		existing, err := s.store.ListClaimsByItem(ctx, claim.ItemID)
		if err != nil {
			return nil, errors.Wrap(errors.CodeUnknown, "list claims", err)
		}
		claim, _ = reconcile.ClampSelf(claim, existing)
		claim.UpdatedAt = s.clock().UTC()
		if err := s.store.UpsertClaim(ctx, claim); err != nil {
			return nil, errors.Wrap(errors.CodeUnknown, "upsert claim", err)
		}

		s.publish(feed.ChangeEvent{
			SessionID: sessionID,
			Entity:    feed.EntityClaim,
			Type:      feed.TypeUpdate,
			Claim:     &claim,
		})
		written = append(written, claim)
	}
	return written, nil
}

// SubmitTaxTip finalizes the actor's tip and, with it, their bill. It is a
// one-shot operation per participant.
func (s *Service) SubmitTaxTip(ctx context.Context, actorID string, tipPercent float64) (domain.Participant, error) {
	participant, err := s.getParticipant(ctx, actorID)
	if err != nil {
		return domain.Participant{}, err
	}
	submitted, err := participant.Submit(tipPercent, s.clock())
	if err != nil {
		return domain.Participant{}, err
	}
	if err := s.store.PutParticipant(ctx, submitted); err != nil {
		return domain.Participant{}, errors.Wrap(errors.CodeUnknown, "persist participant", err)
	}

	s.publish(feed.ChangeEvent{
		SessionID:   submitted.SessionID,
		Entity:      feed.EntityParticipant,
		Type:        feed.TypeUpdate,
		Participant: &submitted,
	})
	return submitted, nil
}

// Summary computes the actor's bill breakdown against current state.
func (s *Service) Summary(ctx context.Context, actorID string) (settle.Summary, error) {
	participant, err := s.getParticipant(ctx, actorID)
	if err != nil {
		return settle.Summary{}, err
	}
	session, err := s.store.GetSession(ctx, participant.SessionID)
	if err != nil {
		return settle.Summary{}, errors.Wrap(errors.CodeUnknown, "get session", err)
	}
	items, err := s.store.ListItems(ctx, participant.SessionID)
	if err != nil {
		return settle.Summary{}, errors.Wrap(errors.CodeUnknown, "list items", err)
	}
	claims, err := s.store.ListClaimsBySession(ctx, participant.SessionID)
	if err != nil {
		return settle.Summary{}, errors.Wrap(errors.CodeUnknown, "list claims", err)
	}
	return settle.Summarize(actorID, session, participant, items, claims), nil
}

// ParticipantSummary pairs a participant with their settlement breakdown and
// their share of the bill subtotal.
type ParticipantSummary struct {
	Participant  domain.Participant
	Summary      settle.Summary
	SharePercent int
	Lines        []settle.Line
}

// GroupSummary computes every participant's breakdown for the final screen,
// in join order.
func (s *Service) GroupSummary(ctx context.Context, sessionID string) ([]ParticipantSummary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "get session", err)
	}
	participants, err := s.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "list participants", err)
	}
	items, err := s.store.ListItems(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "list items", err)
	}
	claims, err := s.store.ListClaimsBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "list claims", err)
	}

	bill := settle.BillSubtotal(items)
	summaries := make([]ParticipantSummary, 0, len(participants))
	for _, participant := range participants {
		summary := settle.Summarize(participant.ID, session, participant, items, claims)
		summaries = append(summaries, ParticipantSummary{
			Participant:  participant,
			Summary:      summary,
			SharePercent: settle.SharePercent(summary.Subtotal, bill),
			Lines:        settle.Lines(participant.ID, items, claims),
		})
	}
	return summaries, nil
}
