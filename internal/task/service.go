// Package task implements the task query engine: filtered, searched,
// sorted and paginated listings plus owner-scoped mutations.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/yourusername/todo-api/internal/model"
	"github.com/yourusername/todo-api/internal/storage"
)

var (
	// ErrForbidden is returned when the caller is not the task's owner.
	ErrForbidden = errors.New("you are not the owner of this task")
	// ErrInvalidTitle is returned when a title is empty or over 200 characters.
	ErrInvalidTitle = errors.New("title must be between 1 and 200 characters")
	// ErrInvalidPatch is returned when a patch field has the wrong JSON type.
	ErrInvalidPatch = errors.New("invalid patch payload")
)

const (
	// DefaultLimit is the page size when the caller does not pass one.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 100
)

const maxTitleLength = 200

// ListParams are the validated inputs of a list query.
type ListParams struct {
	OwnerID *uint // nil lists tasks across all owners
	Status  *model.Status
	Search  string
	SortBy  string
	SortDir string
	Page    int
	Limit   int
}

// PagedTasks is one page of a listing plus its pagination envelope. Total
// counts the filtered set before pagination.
type PagedTasks struct {
	Items      []model.Task `json:"items"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int64        `json:"total_pages"`
}

// CreateInput is the payload for creating a task.
type CreateInput struct {
	Title       string
	Description *string
	Status      string // empty means New
}

// Service executes task operations against the repository, enforcing
// ownership on every mutation.
type Service struct {
	tasks *storage.TaskRepository
}

// NewService creates a task Service.
func NewService(tasks *storage.TaskRepository) *Service {
	return &Service{tasks: tasks}
}

// List returns one page of tasks matching the params.
func (s *Service) List(p ListParams) (*PagedTasks, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}

	items, total, err := s.tasks.List(storage.ListFilter{
		OwnerID: p.OwnerID,
		Status:  p.Status,
		Search:  p.Search,
		SortBy:  p.SortBy,
		SortDir: p.SortDir,
		Offset:  (p.Page - 1) * p.Limit,
		Limit:   p.Limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Task{}
	}

	totalPages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return &PagedTasks{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}, nil
}

// Get fetches a single task by id. Any authenticated caller may read any
// task; single-task retrieval carries no ownership restriction.
func (s *Service) Get(id uint) (*model.Task, error) {
	return s.tasks.FindByID(id)
}

// Create validates the payload and persists a task owned by ownerID.
func (s *Service) Create(ownerID uint, in CreateInput) (*model.Task, error) {
	if !validTitle(in.Title) {
		return nil, ErrInvalidTitle
	}

	status := model.StatusNew
	if in.Status != "" {
		parsed, err := model.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	task := &model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		UserID:      ownerID,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete sets a task's status to Completed. Owner-only and idempotent;
// an already completed task is returned as-is without a second write.
func (s *Service) Complete(id, callerID uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !isOwner(task, callerID) {
		return nil, ErrForbidden
	}

	if task.Status != model.StatusCompleted {
		task.Status = model.StatusCompleted
		if err := s.tasks.Save(task); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// Update applies a partial patch. Only keys present in the patch change;
// description may be set to JSON null to clear it, which is distinct from
// leaving it out. Status values outside the enumeration are rejected.
func (s *Service) Update(id, callerID uint, patch map[string]json.RawMessage) (*model.Task, error) {
	task, err := s.tasks.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !isOwner(task, callerID) {
		return nil, ErrForbidden
	}

	fields := make(map[string]any, len(patch))

	if raw, ok := patch["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return nil, fmt.Errorf("%w: title must be a string", ErrInvalidPatch)
		}
		if !validTitle(title) {
			return nil, ErrInvalidTitle
		}
		fields["title"] = title
	}

	if raw, ok := patch["description"]; ok {
		var description *string
		if err := json.Unmarshal(raw, &description); err != nil {
			return nil, fmt.Errorf("%w: description must be a string or null", ErrInvalidPatch)
		}
		fields["description"] = description
	}

	if raw, ok := patch["status"]; ok {
		var statusStr string
		if err := json.Unmarshal(raw, &statusStr); err != nil {
			return nil, fmt.Errorf("%w: status must be a string", ErrInvalidPatch)
		}
		status, err := model.ParseStatus(statusStr)
		if err != nil {
			return nil, err
		}
		fields["status"] = status
	}

	return s.tasks.UpdateFields(id, fields)
}

// Delete permanently removes a task. Owner-only.
func (s *Service) Delete(id, callerID uint) error {
	task, err := s.tasks.FindByID(id)
	if err != nil {
		return err
	}
	if !isOwner(task, callerID) {
		return ErrForbidden
	}
	return s.tasks.Delete(id)
}

// isOwner is the single authorization predicate shared by every mutating
// operation.
func isOwner(task *model.Task, callerID uint) bool {
	return task.UserID == callerID
}

// validTitle bounds the title at 1 to 200 characters. The limit counts
// runes, not bytes, matching the varchar(200) column.
func validTitle(title string) bool {
	n := utf8.RuneCountInString(title)
	return n >= 1 && n <= maxTitleLength
}
