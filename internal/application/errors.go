package application

import "errors"

// ErrInvalidInput marks a request rejected before any external call;
// the HTTP layer maps it to 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound marks a missing referenced entity; mapped to 404.
var ErrNotFound = errors.New("not found")
