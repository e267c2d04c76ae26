// Package memory is an in-process implementation of the repositories backed
// by maps. It is used for local runs without DynamoDB and by the end-to-end
// router tests. Records are stored as DynamoDB attribute maps so partial
// updates follow the same field names as the dynamo package.
package memory

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type item = map[string]types.AttributeValue

// Store owns every table. Repos returned by its accessors share the lock.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]item
	verifications map[string][]item // account_id -> codes in insertion order
	tasks         map[string]item
	outbox        []item
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]item),
		verifications: make(map[string][]item),
		tasks:         make(map[string]item),
	}
}

func (s *Store) Accounts() *AccountRepo           { return &AccountRepo{s: s} }
func (s *Store) Verifications() *VerificationRepo { return &VerificationRepo{s: s} }
func (s *Store) Tasks() *TaskRepo                 { return &TaskRepo{s: s} }
func (s *Store) Outbox() *OutboxRepo              { return &OutboxRepo{s: s} }

// applyUpdates merges field->value pairs into a copy of it.
func applyUpdates(it item, updates map[string]interface{}) (item, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	out := make(item, len(it)+len(updates))
	for k, v := range it {
		out[k] = v
	}
	for k, v := range updates {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		out[k] = av
	}
	return out, nil
}
