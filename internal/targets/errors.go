package targets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGenreNotFound  = errors.New("genre not found")
	ErrInvalidTargets = errors.New("invalid genre targets")
	ErrUnknownMode    = errors.New("unknown mode")
)

// ValidationError lists every problem found in a genre document. No profile is produced for it.
type ValidationError struct {
	Genre    string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidTargets, e.Genre, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTargets
}
