package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/id"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	defaultSort     = "createdAt:desc"
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldDueDate     = "due_date"
	fieldDone        = "done"
	fieldUpdatedAt   = "updated_at"
)

type Store interface {
	Put(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, taskID string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Update(ctx context.Context, taskID string, updates map[string]interface{}) error
	Delete(ctx context.Context, taskID string) error
}

type Service interface {
	List(ctx context.Context, userID string, q domain.TaskQuery) (*domain.TaskPage, error)
	Create(ctx context.Context, userID string, req domain.CreateTaskRequest) (*domain.Task, error)
	Get(ctx context.Context, userID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID string, req domain.UpdateTaskRequest) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

type service struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewService returns the task service. now defaults to time.Now when nil.
func NewService(store Store, log logrus.FieldLogger, now func() time.Time) Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, log: log, now: now}
}

// List filters, sorts and paginates the caller's tasks in memory. Title
// search is a case-insensitive substring match.
func (s *service) List(ctx context.Context, userID string, q domain.TaskQuery) (*domain.TaskPage, error) {
	tasks, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	matched := make([]domain.Task, 0, len(tasks))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, t := range tasks {
		if needle == "" || strings.Contains(strings.ToLower(t.Title), needle) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, lessFunc(matched, q.Sort))

	res := &domain.TaskPage{Items: []domain.Task{}, Total: len(matched), Page: page, PageSize: size}
	// page-1 past len/size means an empty page; checked before multiplying.
	if page-1 < (len(matched)+size-1)/size {
		start := (page - 1) * size
		end := start + size
		if end > len(matched) {
			end = len(matched)
		}
		res.Items = matched[start:end]
	}
	return res, nil
}

// lessFunc parses "<field>:<asc|desc>". Unknown fields sort by createdAt and
// any direction other than asc is descending. Tasks without a due date sort
// after dated ones when ascending.
func lessFunc(tasks []domain.Task, sortBy string) func(i, j int) bool {
	if sortBy == "" {
		sortBy = defaultSort
	}
	field, dir, _ := strings.Cut(sortBy, ":")
	asc := dir == "asc"

	var cmp func(a, b *domain.Task) int
	switch field {
	case "updatedAt":
		cmp = func(a, b *domain.Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "title":
		cmp = func(a, b *domain.Task) int { return strings.Compare(a.Title, b.Title) }
	case "dueDate":
		cmp = func(a, b *domain.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return a.DueDate.Compare(*b.DueDate)
		}
	default:
		cmp = func(a, b *domain.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return func(i, j int) bool {
		c := cmp(&tasks[i], &tasks[j])
		if asc {
			return c < 0
		}
		return c > 0
	}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateTaskRequest) (*domain.Task, error) {
	now := s.now().UTC()
	t := &domain.Task{
		TaskID:      id.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &due
	}
	if req.Done != nil {
		t.Done = *req.Done
	}
	if err := s.store.Put(ctx, t); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": t.TaskID, "user_id": userID}).Debug("task created")
	return t, nil
}

// Get returns the task only when userID owns it; other users see not found.
func (s *service) Get(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	t, err := s.store.Get(ctx, taskID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, fmt.Errorf("Not found: %w", domain.ErrNotFound)
	}
	return t, nil
}

// Update applies the fields present in req. Absent fields keep their value.
func (s *service) Update(ctx context.Context, userID, taskID string, req domain.UpdateTaskRequest) (*domain.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	updates := map[string]interface{}{fieldUpdatedAt: now}
	if req.Title != nil {
		t.Title = *req.Title
		updates[fieldTitle] = t.Title
	}
	if req.Description != nil {
		t.Description = req.Description
		updates[fieldDescription] = *req.Description
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &due
		updates[fieldDueDate] = due
	}
	if req.Done != nil {
		t.Done = *req.Done
		updates[fieldDone] = t.Done
	}
	t.UpdatedAt = now
	if err := s.store.Update(ctx, taskID, updates); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return err
	}
	return s.store.Delete(ctx, taskID)
}

func parseDueDate(v string) (time.Time, error) {
	due, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("dueDate must be an RFC3339 timestamp: %w", domain.ErrBadRequest)
	}
	return due.UTC(), nil
}
