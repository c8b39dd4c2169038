package util

import (
	"errors"
	"strings"
)

// ErrPublic is an error whose message is safe to show to the end user as-is.
// Anything else must be logged and degraded to a generic failure upstream.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

// IsPublicError returns true if err (or anything it wraps) is an ErrPublic.
func IsPublicError(err error) bool {
	var pub ErrPublic
	return errors.As(err, &pub)
}

func ConcatErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	filtered := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err.Error())
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return errors.New(strings.Join(filtered, "; "))
}
