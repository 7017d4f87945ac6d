package lot

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by MarkPosted when no row has the given id.
var ErrNotFound = errors.New("lot not found")

// StorageError reports a failed dataset query or write. The run that hits
// one must stop; in particular a lot is not announced unless MarkPosted
// returned without a StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(err error, format string, args ...interface{}) error {
	return &StorageError{Op: fmt.Sprintf(format, args...), Err: err}
}
