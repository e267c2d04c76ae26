package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
)

type TaskRepo struct{ s *Store }

func (r *TaskRepo) Put(ctx context.Context, t *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	r.s.mu.Lock()
	r.s.tasks[t.TaskID] = it
	r.s.mu.Unlock()
	return nil
}

func (r *TaskRepo) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	it, ok := r.s.tasks[taskID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("task not found: %w", domain.ErrNotFound)
	}
	var t domain.Task
	if err := attributevalue.UnmarshalMap(it, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByUser returns the user's tasks, newest first.
func (r *TaskRepo) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var tasks []domain.Task
	for _, it := range r.s.tasks {
		var t domain.Task
		if err := attributevalue.UnmarshalMap(it, &t); err != nil {
			return nil, err
		}
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, taskID string, updates map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.tasks[taskID]
	if !ok {
		return fmt.Errorf("task not found: %w", domain.ErrNotFound)
	}
	merged, err := applyUpdates(it, updates)
	if err != nil {
		return err
	}
	r.s.tasks[taskID] = merged
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, taskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	delete(r.s.tasks, taskID)
	r.s.mu.Unlock()
	return nil
}
