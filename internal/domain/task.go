package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the accepted priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Priority    Priority
	EndDate     time.Time
	CreatedAt   time.Time
}

// TaskPatch carries a partial update. A nil field means "leave unchanged";
// only fields present in the request body are populated.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	EndDate     *time.Time
}

// Empty reports whether the patch carries no recognized field.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.EndDate == nil
}

type SortField string

const (
	SortByEndDate   SortField = "endDate"
	SortByPriority  SortField = "priority"
	SortByCreatedAt SortField = "createdAt"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListOptions describes the page and ordering of a task listing. Values
// are assumed normalized by the service layer before they reach a repository.
type ListOptions struct {
	Page     int
	PageSize int
	SortBy   SortField
	Order    SortOrder
}

// Offset returns the number of rows to skip for the requested page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}

// Pagination is the metadata returned alongside a task page.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}
