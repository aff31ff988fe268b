package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// CreateTaskInput carries the raw create-request fields. Dates and the
// priority arrive as strings so that validation failures map back to
// field-level messages.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	EndDate     string
}

// UpdateTaskInput carries a partial update. Nil means the field was absent
// from the request body.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	EndDate     *string
}

// TaskService implements the owner-scoped task operations. Every call takes
// the authenticated owner's id; callers never reach a task by id alone.
type TaskService interface {
	List(ctx context.Context, ownerID int64, page, pageSize int, sortBy, sortOrder string) ([]domain.Task, domain.Pagination, error)
	Get(ctx context.Context, ownerID, taskID int64) (*domain.Task, error)
	Create(ctx context.Context, ownerID int64, in CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID int64, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) error
}

type taskService struct {
	tasks       repository.TaskRepository
	maxPageSize int
}

func NewTaskService(tasks repository.TaskRepository, maxPageSize int) TaskService {
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &taskService{tasks: tasks, maxPageSize: maxPageSize}
}

// List returns one page of the owner's tasks plus pagination metadata. Out
// of range parameters fall back to defaults rather than erroring: unknown
// sort fields become endDate, unknown orders become ascending, and an
// oversized page size is clamped.
func (s *taskService) List(ctx context.Context, ownerID int64, page, pageSize int, sortBy, sortOrder string) ([]domain.Task, domain.Pagination, error) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	opts := domain.ListOptions{
		Page:     page,
		PageSize: pageSize,
		SortBy:   normalizeSortField(sortBy),
		Order:    normalizeSortOrder(sortOrder),
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID, opts)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	total, err := s.tasks.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	return tasks, domain.Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}, nil
}

func (s *taskService) Get(ctx context.Context, ownerID, taskID int64) (*domain.Task, error) {
	task, err := s.tasks.GetByOwner(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) Create(ctx context.Context, ownerID int64, in CreateTaskInput) (*domain.Task, error) {
	var fields []FieldError

	title := strings.TrimSpace(in.Title)
	if title == "" {
		fields = append(fields, FieldError{Field: "title", Message: "Title is required"})
	}

	var endDate time.Time
	if in.EndDate == "" {
		fields = append(fields, FieldError{Field: "endDate", Message: "End date is required"})
	} else {
		parsed, err := parseDate(in.EndDate)
		if err != nil {
			fields = append(fields, FieldError{Field: "endDate", Message: "End date must be a valid date"})
		} else {
			endDate = parsed
		}
	}

	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
		if !domain.ValidPriority(priority) {
			fields = append(fields, FieldError{Field: "priority", Message: "Priority must be low, medium, or high"})
		}
	}

	if len(fields) > 0 {
		return nil, validationError(fields...)
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		EndDate:     endDate,
	}
	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies a partial patch. Ownership is checked before the body is
// validated, and an explicitly empty endDate string is treated as absent
// rather than clearing the date.
func (s *taskService) Update(ctx context.Context, ownerID, taskID int64, in UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.GetByOwner(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	patch, err := buildPatch(in)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, validationError(FieldError{Field: "body", Message: "Please provide at least one field to update"})
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.EndDate != nil {
		task.EndDate = *patch.EndDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, taskID int64) error {
	if _, err := s.tasks.GetByOwner(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	if err := s.tasks.Delete(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func buildPatch(in UpdateTaskInput) (domain.TaskPatch, error) {
	var (
		patch  domain.TaskPatch
		fields []FieldError
	)

	patch.Title = in.Title
	patch.Description = in.Description

	if in.Priority != nil {
		p := domain.Priority(*in.Priority)
		if !domain.ValidPriority(p) {
			fields = append(fields, FieldError{Field: "priority", Message: "Priority must be low, medium, or high"})
		} else {
			patch.Priority = &p
		}
	}

	if in.EndDate != nil && *in.EndDate != "" {
		parsed, err := parseDate(*in.EndDate)
		if err != nil {
			fields = append(fields, FieldError{Field: "endDate", Message: "End date must be a valid date"})
		} else {
			patch.EndDate = &parsed
		}
	}

	if len(fields) > 0 {
		return domain.TaskPatch{}, validationError(fields...)
	}
	return patch, nil
}

// normalizeSortField whitelists the sort field; anything unknown silently
// becomes the endDate default.
func normalizeSortField(field string) domain.SortField {
	switch domain.SortField(field) {
	case domain.SortByEndDate, domain.SortByPriority, domain.SortByCreatedAt:
		return domain.SortField(field)
	default:
		return domain.SortByEndDate
	}
}

// normalizeSortOrder treats anything other than "desc" as ascending.
func normalizeSortOrder(order string) domain.SortOrder {
	if domain.SortOrder(order) == domain.SortDesc {
		return domain.SortDesc
	}
	return domain.SortAsc
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
