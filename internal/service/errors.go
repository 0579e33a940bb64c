package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/ibp/internal/repository"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidAction  = errors.New("action must be one of: Tossed, Filled")
	ErrInvalidComment = errors.New("comment author and body are required")
	ErrNoRequests     = errors.New("no requests to ship")
	ErrUnassigned     = errors.New("inmate is not assigned to a unit")
	ErrUnitMismatch   = errors.New("inmates are not all assigned to unit")
	ErrAlreadyShipped = repository.ErrAlreadyShipped
	ErrNoProvider     = errors.New("no provider for jurisdiction")
)

// notFound maps a missing row to ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
