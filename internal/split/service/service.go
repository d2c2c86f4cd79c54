// Package service orchestrates session state: it validates writes against
// the capacity invariant, persists them, and publishes change events to the
// session feed.
package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/louisbranch/splittab/internal/feed"
	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/platform/id"
	"github.com/louisbranch/splittab/internal/split/domain"
	"github.com/louisbranch/splittab/internal/storage"
)

// Service is the write and read surface over one store and one feed hub.
type Service struct {
	store       storage.Store
	hub         *feed.Hub
	clock       func() time.Time
	idGenerator func() (string, error)
}

// New creates a Service with default clock and ID generation.
func New(store storage.Store, hub *feed.Hub) *Service {
	return &Service{
		store:       store,
		hub:         hub,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

func (s *Service) publish(event feed.ChangeEvent) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}

// CreateSession creates a new session with a fresh join code.
func (s *Service) CreateSession(ctx context.Context, taxPercent float64) (domain.Session, error) {
	session, err := domain.CreateSession(domain.CreateSessionInput{TaxPercent: taxPercent}, s.clock, s.idGenerator)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		return domain.Session{}, errors.Wrap(errors.CodeUnknown, "persist session", err)
	}
	return session, nil
}

// GetSessionByCode resolves a join code to its session.
func (s *Service) GetSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Session{}, errors.New(errors.CodeSessionCodeEmpty, "session code is required")
	}
	session, err := s.store.GetSessionByCode(ctx, code)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return domain.Session{}, errors.New(errors.CodeNotFound, "session not found")
		}
		return domain.Session{}, errors.Wrap(errors.CodeUnknown, "get session", err)
	}
	return session, nil
}

// Join adds a participant to a session and announces them on the feed.
func (s *Service) Join(ctx context.Context, sessionID, name string) (domain.Participant, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return domain.Participant{}, errors.New(errors.CodeNotFound, "session not found")
		}
		return domain.Participant{}, errors.Wrap(errors.CodeUnknown, "get session", err)
	}

	participant, err := domain.CreateParticipant(domain.CreateParticipantInput{
		SessionID: sessionID,
		Name:      name,
	}, s.clock, s.idGenerator)
	if err != nil {
		return domain.Participant{}, err
	}
	if err := s.store.PutParticipant(ctx, participant); err != nil {
		return domain.Participant{}, errors.Wrap(errors.CodeUnknown, "persist participant", err)
	}

	s.publish(feed.ChangeEvent{
		SessionID:   sessionID,
		Entity:      feed.EntityParticipant,
		Type:        feed.TypeInsert,
		Participant: &participant,
	})
	return participant, nil
}

// AddItem creates an item on the session's bill.
func (s *Service) AddItem(ctx context.Context, input domain.CreateItemInput) (domain.Item, error) {
	item, err := domain.CreateItem(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Item{}, err
	}
	if err := s.store.PutItem(ctx, item); err != nil {
		return domain.Item{}, errors.Wrap(errors.CodeUnknown, "persist item", err)
	}

	s.publish(feed.ChangeEvent{
		SessionID: item.SessionID,
		Entity:    feed.EntityItem,
		Type:      feed.TypeInsert,
		Item:      &item,
	})
	return item, nil
}

// UpdateItem edits an item's name, price, or quantity.
func (s *Service) UpdateItem(ctx context.Context, itemID string, input domain.UpdateItemInput) (domain.Item, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	updated, err := domain.UpdateItem(item, input)
	if err != nil {
		return domain.Item{}, err
	}
	if err := s.store.PutItem(ctx, updated); err != nil {
		return domain.Item{}, errors.Wrap(errors.CodeUnknown, "persist item", err)
	}

	s.publish(feed.ChangeEvent{
		SessionID: updated.SessionID,
		Entity:    feed.EntityItem,
		Type:      feed.TypeUpdate,
		Item:      &updated,
	})
	return updated, nil
}

// DeleteItem removes an item while no participant holds an active claim on
// it. The store enforces the guard atomically.
func (s *Service) DeleteItem(ctx context.Context, itemID string) error {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		switch {
		case stderrors.Is(err, storage.ErrConflict):
			return errors.New(errors.CodeItemClaimed, "item still has active claims")
		case stderrors.Is(err, storage.ErrNotFound):
			return errors.New(errors.CodeNotFound, "item not found")
		}
		return errors.Wrap(errors.CodeUnknown, "delete item", err)
	}

	s.publish(feed.ChangeEvent{
		SessionID: item.SessionID,
		Entity:    feed.EntityItem,
		Type:      feed.TypeDelete,
		Item:      &item,
	})
	return nil
}

// ListItems returns the session's items in creation order.
func (s *Service) ListItems(ctx context.Context, sessionID string) ([]domain.Item, error) {
	items, err := s.store.ListItems(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "list items", err)
	}
	return items, nil
}

// GetItem returns one item by ID.
func (s *Service) GetItem(ctx context.Context, itemID string) (domain.Item, error) {
	return s.getItem(ctx, itemID)
}

func (s *Service) getItem(ctx context.Context, itemID string) (domain.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return domain.Item{}, errors.New(errors.CodeNotFound, "item not found")
		}
		return domain.Item{}, errors.Wrap(errors.CodeUnknown, "get item", err)
	}
	return item, nil
}

func (s *Service) getParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return domain.Participant{}, errors.New(errors.CodeNotFound, "participant not found")
		}
		return domain.Participant{}, errors.Wrap(errors.CodeUnknown, "get participant", err)
	}
	return participant, nil
}
