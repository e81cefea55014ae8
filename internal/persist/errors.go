package persist

import "fmt"

// StorageError reports a failed read or write of the persisted collection.
// Read failures degrade to an empty collection; write failures leave the
// in-memory state ahead of storage until the next successful write.
type StorageError struct {
	Op  string // "save" or "load"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ImportFormatError rejects an import as a whole. Nothing is merged.
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ImportFormatError) Unwrap() error { return e.Err }
