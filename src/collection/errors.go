package collection

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Validation errors abort the operation with no
// partial state change; storage failures roll the in-memory mutation back;
// lookup failures degrade gracefully.
var (
	// ErrNotFound means a mutation referenced a nonexistent record id.
	ErrNotFound = errors.New("record not found")
	// ErrUnauthenticated means the mutation requires a signed-in subject.
	ErrUnauthenticated = errors.New("sign-in required")
	// ErrReadOnly means a mutation was attempted against a shared snapshot.
	ErrReadOnly = errors.New("collection is read-only")
	// ErrNoLinkAvailable means a catalog refresh was requested for a record
	// without a usable album link.
	ErrNoLinkAvailable = errors.New("record has no album link")
	// ErrStaleOrder means a reorder raced a concurrent load; the caller has
	// already been given the authoritative reloaded collection.
	ErrStaleOrder = errors.New("reorder referenced stale record ids")
	// ErrLookupFailure means the metadata collaborator returned no data.
	// Not fatal: the triggering mutation proceeds with user-supplied fields.
	ErrLookupFailure = errors.New("catalog lookup returned no data")
	// ErrImportFormat means an import payload was not a well-formed array.
	ErrImportFormat = errors.New("import payload is not a record array")
)

// StorageError wraps a persistence adapter failure. The mutation that
// triggered the save has been rolled back by the time this surfaces.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageFailure reports whether err is a persistence failure.
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
