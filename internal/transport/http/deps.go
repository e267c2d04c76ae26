package http

import (
	"context"

	"github.com/fawziabuhussin/task-manager-api/internal/domain"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
}

// VerificationRepository is the minimal interface the router requires from a verification-code store.
type VerificationRepository interface {
	Put(ctx context.Context, v *domain.VerificationCode) error
	Latest(ctx context.Context, accountID string) (*domain.VerificationCode, error)
	Update(ctx context.Context, accountID, codeID string, updates map[string]interface{}) error
}

// TaskRepository is the minimal interface the router requires from a task store.
type TaskRepository interface {
	Put(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, taskID string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Update(ctx context.Context, taskID string, updates map[string]interface{}) error
	Delete(ctx context.Context, taskID string) error
}

// OutboxRepository is the minimal interface the router requires from the outbox store.
type OutboxRepository interface {
	Put(ctx context.Context, e *domain.OutboxEmail) error
	ListRecent(ctx context.Context, limit int) ([]domain.OutboxEmail, error)
}

// Mailer delivers outbound email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}
