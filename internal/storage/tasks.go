package storage

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yourusername/todo-api/internal/model"
)

var (
	// ErrTaskNotFound is returned when no task matches the lookup.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidOwner is returned when a task references a missing user.
	ErrInvalidOwner = errors.New("task owner does not exist")
)

// sortColumns is the whitelist of sortable columns. Anything outside it
// falls back to id, so arbitrary column names never reach the SQL string.
var sortColumns = map[string]string{
	"id":      "id",
	"title":   "title",
	"status":  "status",
	"user_id": "user_id",
}

// ListFilter describes one page of a task listing. A nil OwnerID means the
// query spans all owners.
type ListFilter struct {
	OwnerID *uint
	Status  *model.Status
	Search  string // case-insensitive substring over title or description
	SortBy  string // id, title, status or user_id; anything else means id
	SortDir string // asc or desc; anything else means desc
	Offset  int
	Limit   int
}

// orderClause builds the ORDER BY expression from whitelisted parts only.
// A secondary id DESC keeps equal-valued rows in a stable order so paging
// is reproducible across requests.
func (f ListFilter) orderClause() string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "id"
	}
	direction := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		direction = "ASC"
	}
	if column == "id" {
		return fmt.Sprintf("id %s", direction)
	}
	return fmt.Sprintf("%s %s, id DESC", column, direction)
}

// TaskRepository handles task persistence.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(task *model.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrInvalidOwner
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by primary key.
func (r *TaskRepository) FindByID(id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// Save writes every column of an already-loaded task.
func (r *TaskRepository) Save(task *model.Task) error {
	if err := r.db.Save(task).Error; err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// UpdateFields applies a column map to a task. Map values may be nil to
// clear nullable columns, which Save on a struct cannot express.
func (r *TaskRepository) UpdateFields(id uint, fields map[string]any) (*model.Task, error) {
	if len(fields) > 0 {
		result := r.db.Model(&model.Task{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrTaskNotFound
		}
	}
	return r.FindByID(id)
}

// Delete permanently removes a task.
func (r *TaskRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// List returns one page of tasks plus the total count of rows matching the
// filter before pagination. Every user-supplied value travels as a bind
// parameter; sort column and direction come from the whitelist above.
func (r *TaskRepository) List(f ListFilter) ([]model.Task, int64, error) {
	query := r.db.Model(&model.Task{})

	if f.OwnerID != nil {
		query = query.Where("user_id = ?", *f.OwnerID)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	var tasks []model.Task
	err := query.
		Order(f.orderClause()).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}
