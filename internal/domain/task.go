package domain

import "time"

type Task struct {
	TaskID      string     `json:"id" dynamodbav:"task_id"`
	UserID      string     `json:"userId" dynamodbav:"user_id"`
	Title       string     `json:"title" dynamodbav:"title"`
	Description *string    `json:"description" dynamodbav:"description"`
	DueDate     *time.Time `json:"dueDate" dynamodbav:"due_date"`
	Done        bool       `json:"done" dynamodbav:"done"`
	CreatedAt   time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Done        *bool   `json:"done"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Done        *bool   `json:"done"`
}

// TaskQuery drives the paginated task listing.
type TaskQuery struct {
	Page     int
	PageSize int
	Search   string
	Sort     string // "<field>:<asc|desc>"
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items    []Task `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}
