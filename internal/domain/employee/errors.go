package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNoUserSource     = errors.New("no device configured for user sync")
)
