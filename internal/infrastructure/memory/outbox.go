package memory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
)

type OutboxRepo struct{ s *Store }

func (r *OutboxRepo) Put(ctx context.Context, e *domain.OutboxEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal outbox email: %w", err)
	}
	r.s.mu.Lock()
	r.s.outbox = append(r.s.outbox, it)
	r.s.mu.Unlock()
	return nil
}

// ListRecent returns at most limit messages, newest first.
func (r *OutboxRepo) ListRecent(ctx context.Context, limit int) ([]domain.OutboxEmail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	emails := make([]domain.OutboxEmail, 0, len(r.s.outbox))
	for i := len(r.s.outbox) - 1; i >= 0; i-- {
		if limit > 0 && len(emails) == limit {
			break
		}
		var e domain.OutboxEmail
		if err := attributevalue.UnmarshalMap(r.s.outbox[i], &e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, nil
}
