package csg

import (
	"errors"
	"fmt"
)

// ErrNotLoggedIn reports that the session token was rejected. It is fatal
// to a refresh cycle; the caller is expected to re-authenticate out of
// band.
var ErrNotLoggedIn = errors.New("csg: not logged in")

// APIError is a classified provider failure: the HTTP exchange succeeded
// but the business envelope carried a non-OK status. It degrades the
// fields of the call that produced it and nothing else.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("csg: api error %s: %s", e.Code, e.Message)
}

// IsAPIError reports whether err's chain contains a classified provider
// failure.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
