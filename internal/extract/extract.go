// Package extract turns an article URL into best-effort full text through an
// ordered chain of extraction backends.
package extract

import (
	"context"
	"errors"
	"fmt"
)

// Extractor is one content-extraction backend.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, url string) (string, error)
}

// PermanentError marks a failure that retrying the same backend cannot fix
// (bad input, auth failure, rejected request). The retriever moves straight
// to the next backend.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as non-retriable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err (or anything it wraps) is non-retriable.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
