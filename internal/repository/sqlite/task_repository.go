package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'medium',
	end_date DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);
`

const createTasksOwnerIndex = `CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id);`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createTasksOwnerIndex); err != nil {
		return fmt.Errorf("create tasks owner index: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (int64, error) {
	task.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (owner_id, title, description, priority, end_date, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		task.OwnerID,
		task.Title,
		task.Description,
		string(task.Priority),
		task.EndDate.UTC(),
		task.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task last insert id: %w", err)
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) GetByOwner(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, title, description, priority, end_date, created_at
FROM tasks
WHERE id = ? AND owner_id = ?`,
		id,
		ownerID,
	)
	return scanTask(row)
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET title=?, description=?, priority=?, end_date=?
WHERE id=? AND owner_id=?`,
		task.Title,
		task.Description,
		string(task.Priority),
		task.EndDate.UTC(),
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64, opts domain.ListOptions) ([]domain.Task, error) {
	query := fmt.Sprintf(`
SELECT id, owner_id, title, description, priority, end_date, created_at
FROM tasks
WHERE owner_id = ?
ORDER BY %s %s, id ASC
LIMIT ? OFFSET ?`,
		orderExpr(opts.SortBy),
		orderDirection(opts.Order),
	)

	rows, err := r.db.QueryContext(ctx, query, ownerID, opts.PageSize, opts.Offset())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, nil
}

// orderExpr maps a sort field to its ORDER BY expression. Priority sorts by
// severity rank rather than alphabetically.
func orderExpr(field domain.SortField) string {
	switch field {
	case domain.SortByPriority:
		return `CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END`
	case domain.SortByCreatedAt:
		return `created_at`
	default:
		return `end_date`
	}
}

func orderDirection(order domain.SortOrder) string {
	if order == domain.SortDesc {
		return "DESC"
	}
	return "ASC"
}

func scanTask(row interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task     domain.Task
		priority string
	)
	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&priority,
		&task.EndDate,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	task.Priority = domain.Priority(priority)
	return &task, nil
}
