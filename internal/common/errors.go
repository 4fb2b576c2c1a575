package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input validation.
	ErrorValidation = errors.New("validation error")

	// Local data that cannot be read back (bad ciphertext, bad JSON).
	ErrorMalformedData = errors.New("malformed data")
)
