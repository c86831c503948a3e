package images

import (
	"errors"
	"fmt"
)

var (
	// ErrImageWrite is matched by every *ImageWriteError via errors.Is.
	ErrImageWrite = errors.New("failed to write image")

	// ErrDirLocked is returned by Lock when another process holds the
	// image directory.
	ErrDirLocked = errors.New("image directory is locked by another process")
)

// ImageWriteError reports a local storage failure while saving an image.
type ImageWriteError struct {
	// Path is the destination that could not be written.
	Path string

	// Err is the underlying filesystem error.
	Err error
}

// Error implements the error interface.
func (e *ImageWriteError) Error() string {
	return fmt.Sprintf("failed to write image %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ImageWriteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrImageWrite.
func (e *ImageWriteError) Is(target error) bool {
	return target == ErrImageWrite
}
