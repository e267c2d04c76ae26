package memory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
)

type AccountRepo struct{ s *Store }

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.AccountID]; ok {
		return fmt.Errorf("account already exists: %w", domain.ErrConflict)
	}
	existing, err := r.findByEmail(a.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	r.s.accounts[a.AccountID] = it
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	it, ok := r.s.accounts[accountID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(it, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, err := r.findByEmail(email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return a, nil
}

// findByEmail must be called with the store lock held.
func (r *AccountRepo) findByEmail(email string) (*domain.Account, error) {
	for _, it := range r.s.accounts {
		var a domain.Account
		if err := attributevalue.UnmarshalMap(it, &a); err != nil {
			return nil, err
		}
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	merged, err := applyUpdates(it, updates)
	if err != nil {
		return err
	}
	r.s.accounts[accountID] = merged
	return nil
}
