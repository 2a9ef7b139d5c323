package login

import "errors"

// ErrInvalidCredentials is returned for every authentication failure during
// login, whether the username is unknown or the password is wrong. Callers
// must not be able to tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")
