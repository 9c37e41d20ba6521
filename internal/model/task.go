package model

// Task is a to-do item owned by exactly one user. Ownership is fixed at
// creation; there is no transfer operation.
type Task struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Title       string  `gorm:"size:200;not null" json:"title"`
	Description *string `json:"description,omitempty"`
	Status      Status  `gorm:"size:20;not null;default:New" json:"status"`
	UserID      uint    `gorm:"index;not null" json:"user_id"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}
