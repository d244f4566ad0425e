package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrMissingSource = errors.New("missing source path")
	ErrReadOnly      = errors.New("store is in read-only mode")
)

// FileNotFoundError is returned by stores when a document does not exist.
// Path is absolute.
type FileNotFoundError struct {
	// Role is "Source" or "Target" once the pipeline knows which side failed.
	Role string
	Path string
}

func (e *FileNotFoundError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("file not found: %s", e.Path)
	}
	return fmt.Sprintf("%s file not found: %s", e.Role, e.Path)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}
