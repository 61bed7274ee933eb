package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("event not found")
	ErrForbidden = errors.New("permission denied")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
