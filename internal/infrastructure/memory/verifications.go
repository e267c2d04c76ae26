package memory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
)

type VerificationRepo struct{ s *Store }

func (r *VerificationRepo) Put(ctx context.Context, v *domain.VerificationCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	r.s.mu.Lock()
	r.s.verifications[v.AccountID] = append(r.s.verifications[v.AccountID], it)
	r.s.mu.Unlock()
	return nil
}

// Latest returns the record with the highest code_id for the account.
func (r *VerificationRepo) Latest(ctx context.Context, accountID string) (*domain.VerificationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *domain.VerificationCode
	for _, it := range r.s.verifications[accountID] {
		var v domain.VerificationCode
		if err := attributevalue.UnmarshalMap(it, &v); err != nil {
			return nil, err
		}
		if latest == nil || v.CodeID > latest.CodeID {
			latest = &v
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("verification code not found: %w", domain.ErrNotFound)
	}
	return latest, nil
}

func (r *VerificationRepo) Update(ctx context.Context, accountID, codeID string, updates map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	codes := r.s.verifications[accountID]
	for i, it := range codes {
		var v domain.VerificationCode
		if err := attributevalue.UnmarshalMap(it, &v); err != nil {
			return err
		}
		if v.CodeID != codeID {
			continue
		}
		merged, err := applyUpdates(it, updates)
		if err != nil {
			return err
		}
		codes[i] = merged
		return nil
	}
	return fmt.Errorf("verification code not found: %w", domain.ErrNotFound)
}
