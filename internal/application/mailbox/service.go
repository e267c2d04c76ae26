// Package mailbox captures outgoing mail in the outbox store and exposes it
// to the development mailbox page.
package mailbox

import (
	"context"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/id"
)

// DefaultLimit is how many messages the mailbox page shows.
const DefaultLimit = 50

type Store interface {
	Put(ctx context.Context, e *domain.OutboxEmail) error
	ListRecent(ctx context.Context, limit int) ([]domain.OutboxEmail, error)
}

type Service interface {
	// SendEmail records the message instead of delivering it.
	SendEmail(ctx context.Context, to, subject, body string) error
	Recent(ctx context.Context, limit int) ([]domain.OutboxEmail, error)
}

type service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}
}

func (s *service) SendEmail(ctx context.Context, to, subject, body string) error {
	return s.store.Put(ctx, &domain.OutboxEmail{
		EmailID:   id.New(),
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: s.now().UTC(),
	})
}

func (s *service) Recent(ctx context.Context, limit int) ([]domain.OutboxEmail, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return s.store.ListRecent(ctx, limit)
}
