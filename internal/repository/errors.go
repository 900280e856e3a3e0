package repository

import "errors"

// ErrStaleLocation is returned when a write carries a fix older than the stored one.
var ErrStaleLocation = errors.New("location is older than the stored fix")
