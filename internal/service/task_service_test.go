package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard/internal/domain"
	"taskboard/internal/repository/sqlite"
)

func newTestTasks(t *testing.T) (TaskService, int64, int64) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	require.NoError(t, users.Init(ctx))
	tasks := sqlite.NewTaskRepository(db)
	require.NoError(t, tasks.Init(ctx))

	ownerA, err := users.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", PasswordHash: "d"})
	require.NoError(t, err)
	ownerB, err := users.Create(ctx, &domain.User{Name: "B", Email: "b@x.com", PasswordHash: "d"})
	require.NoError(t, err)

	return NewTaskService(tasks, 100), ownerA, ownerB
}

func mustCreate(t *testing.T, svc TaskService, owner int64, title, endDate string) *domain.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), owner, CreateTaskInput{Title: title, EndDate: endDate})
	require.NoError(t, err)
	return task
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	task, err := svc.Create(ctx, owner, CreateTaskInput{Title: "Ship", EndDate: "2025-03-01"})
	require.NoError(t, err)
	require.Equal(t, domain.PriorityMedium, task.Priority)
	require.Equal(t, owner, task.OwnerID)

	_, err = svc.Create(ctx, owner, CreateTaskInput{Title: "", EndDate: "2025-03-01"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Title is required", verr.First())

	_, err = svc.Create(ctx, owner, CreateTaskInput{Title: "x", EndDate: ""})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "End date is required", verr.First())

	_, err = svc.Create(ctx, owner, CreateTaskInput{Title: "x", EndDate: "not-a-date"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "End date must be a valid date", verr.First())

	_, err = svc.Create(ctx, owner, CreateTaskInput{Title: "x", EndDate: "2025-03-01", Priority: "urgent"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Priority must be low, medium, or high", verr.First())
}

func TestCreate_AcceptsRFC3339Dates(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	task, err := svc.Create(ctx, owner, CreateTaskInput{Title: "x", EndDate: "2025-03-01T10:30:00Z"})
	require.NoError(t, err)
	require.Equal(t, 10, task.EndDate.Hour())
}

func TestGet_RoundTripAndOwnerScope(t *testing.T) {
	ctx := context.Background()
	svc, ownerA, ownerB := newTestTasks(t)

	created, err := svc.Create(ctx, ownerA, CreateTaskInput{
		Title:    "T",
		Priority: "high",
		EndDate:  "2025-01-01",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, ownerA, created.ID)
	require.NoError(t, err)
	require.Equal(t, "T", got.Title)
	require.Equal(t, domain.PriorityHigh, got.Priority)
	require.True(t, got.EndDate.Equal(created.EndDate))

	// another user's id yields not-found, never a forbidden-style leak
	_, err = svc.Get(ctx, ownerB, created.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.Update(ctx, ownerB, created.ID, UpdateTaskInput{Title: ptr("stolen")})
	require.ErrorIs(t, err, ErrTaskNotFound)
	require.ErrorIs(t, svc.Delete(ctx, ownerB, created.ID), ErrTaskNotFound)
}

func TestUpdate_PartialPatch(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	created, err := svc.Create(ctx, owner, CreateTaskInput{
		Title:    "T",
		Priority: "high",
		EndDate:  "2025-01-01",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, created.ID, UpdateTaskInput{Description: ptr("x")})
	require.NoError(t, err)
	require.Equal(t, "T", updated.Title)
	require.Equal(t, domain.PriorityHigh, updated.Priority)
	require.True(t, updated.EndDate.Equal(created.EndDate))
	require.Equal(t, "x", updated.Description)
}

func TestUpdate_EmptyEndDateIsNoChange(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	created := mustCreate(t, svc, owner, "T", "2025-01-01")

	updated, err := svc.Update(ctx, owner, created.ID, UpdateTaskInput{
		Title:   ptr("renamed"),
		EndDate: ptr(""),
	})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.True(t, updated.EndDate.Equal(created.EndDate))
}

func TestUpdate_Validation(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	created := mustCreate(t, svc, owner, "T", "2025-01-01")

	var verr *ValidationError

	_, err := svc.Update(ctx, owner, created.ID, UpdateTaskInput{})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Please provide at least one field to update", verr.First())

	// an empty endDate alone counts as no field at all
	_, err = svc.Update(ctx, owner, created.ID, UpdateTaskInput{EndDate: ptr("")})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Please provide at least one field to update", verr.First())

	_, err = svc.Update(ctx, owner, created.ID, UpdateTaskInput{Priority: ptr("urgent")})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Priority must be low, medium, or high", verr.First())

	_, err = svc.Update(ctx, owner, created.ID, UpdateTaskInput{EndDate: ptr("not-a-date")})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "End date must be a valid date", verr.First())
}

func TestUpdate_NotFoundPrecedesBodyValidation(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	// invalid body, missing task: existence wins
	_, err := svc.Update(ctx, owner, 999, UpdateTaskInput{Priority: ptr("urgent")})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	created := mustCreate(t, svc, owner, "T", "2025-01-01")

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, owner, created.ID), ErrTaskNotFound)
	_, err := svc.Get(ctx, owner, created.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestList_PaginationInvariants(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	const n = 7
	for i := 0; i < n; i++ {
		mustCreate(t, svc, owner, "task", "2025-01-01")
	}

	var seen int
	for page := 1; ; page++ {
		tasks, pagination, err := svc.List(ctx, owner, page, 3, "", "")
		require.NoError(t, err)
		require.EqualValues(t, n, pagination.Total)
		require.EqualValues(t, 3, pagination.TotalPages)
		if page > int(pagination.TotalPages) {
			require.Empty(t, tasks)
			break
		}
		seen += len(tasks)
	}
	require.Equal(t, n, seen)
}

func TestList_DefaultsAndClamping(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)
	mustCreate(t, svc, owner, "only", "2025-01-01")

	_, pagination, err := svc.List(ctx, owner, 0, 0, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, pagination.Page)
	require.Equal(t, 10, pagination.PageSize)
	require.EqualValues(t, 1, pagination.TotalPages)

	_, pagination, err = svc.List(ctx, owner, 1, 100000, "", "")
	require.NoError(t, err)
	require.Equal(t, 100, pagination.PageSize)
}

func TestList_EmptyOwnerHasZeroTotalPages(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	tasks, pagination, err := svc.List(ctx, owner, 1, 10, "", "")
	require.NoError(t, err)
	require.Empty(t, tasks)
	require.EqualValues(t, 0, pagination.Total)
	require.EqualValues(t, 0, pagination.TotalPages)
}

func TestList_SortWhitelistFallsBack(t *testing.T) {
	ctx := context.Background()
	svc, owner, _ := newTestTasks(t)

	later, err := svc.Create(ctx, owner, CreateTaskInput{Title: "b-later", EndDate: "2025-06-01"})
	require.NoError(t, err)
	earlier, err := svc.Create(ctx, owner, CreateTaskInput{Title: "a-earlier", EndDate: "2025-01-01"})
	require.NoError(t, err)

	// "title" is not whitelisted; behaves exactly like sortBy=endDate asc
	tasks, _, err := svc.List(ctx, owner, 1, 10, "title", "sideways")
	require.NoError(t, err)
	require.Equal(t, earlier.ID, tasks[0].ID)
	require.Equal(t, later.ID, tasks[1].ID)

	tasks, _, err = svc.List(ctx, owner, 1, 10, "endDate", "desc")
	require.NoError(t, err)
	require.Equal(t, later.ID, tasks[0].ID)
}

func ptr[T any](v T) *T { return &v }
