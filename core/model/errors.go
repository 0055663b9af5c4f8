package model

import "errors"

// ErrInvalidConfiguration is returned when a caller supplies an unusable
// setting such as a non-positive tick interval or forecast horizon.
var ErrInvalidConfiguration = errors.New("invalid configuration")
