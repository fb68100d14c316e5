package httpx

import "errors"

// HTTPStatusCoder is implemented by errors that carry an upstream HTTP status.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusCodeOf unwraps err looking for an upstream HTTP status. Returns 0 when
// the error carries none.
func StatusCodeOf(err error) int {
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

// IsClientStatus reports whether code is a 4xx status.
func IsClientStatus(code int) bool {
	return code >= 400 && code <= 499
}
