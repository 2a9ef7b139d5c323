// Package errors provides structured error handling with error codes for clinicore.
//
// The package standardizes error handling across all services with typed error
// codes, error wrapping, and automatic HTTP status code mapping.
//
// Creating errors with codes:
//
//	err := errors.New(errors.ErrCodeNotFound, "verification token not found")
//	err := errors.Wrap(dbErr, errors.ErrCodeDatabase, "failed to query users")
//
// Responding at the HTTP boundary:
//
//	render.Status(r, errors.HTTPStatus(err))
//
// Authentication failures are deliberately mapped to a single 401 regardless of
// the underlying reason so that responses do not aid account enumeration; the
// detailed cause is logged server-side before conversion.
package errors
