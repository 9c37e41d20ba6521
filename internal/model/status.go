package model

import (
	"errors"
	"fmt"
)

// Status is the closed set of task lifecycle states.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// ErrInvalidStatus is returned for status strings outside the enumeration.
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus maps a wire-level string onto a Status. Anything outside the
// three known values is rejected so arbitrary strings never reach storage.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusInProgress, StatusCompleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}
