// Package model defines the persistent entities and their JSON shapes.
package model

// User is a registered account. The password column holds a bcrypt digest
// and is never serialized.
type User struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	FirstName string  `gorm:"size:50;not null" json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
	Username  string  `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password  string  `gorm:"size:255;not null" json:"-"`

	// Deleting a user removes their tasks with it.
	Tasks []Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}
