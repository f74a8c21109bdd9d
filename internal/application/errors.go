package application

import "errors"

var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("conflict")
var ErrInvalidDestination = errors.New("destination has no valid country code")
