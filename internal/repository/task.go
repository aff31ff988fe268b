package repository

import (
	"context"

	"taskboard/internal/domain"
)

// TaskRepository exposes owner-scoped persistence operations for tasks.
// Every read and mutation is keyed by (id, ownerID); a task belonging to a
// different owner behaves exactly like a missing one.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	GetByOwner(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, ownerID, id int64) error
	ListByOwner(ctx context.Context, ownerID int64, opts domain.ListOptions) ([]domain.Task, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}
