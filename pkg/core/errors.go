package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors. Check with errors.Is; most are returned wrapped with the
// entity or id involved.
var (
	// ErrNotFound is returned when a phoneme id or named entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyName is returned when creating an entity with a blank name.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrNameConflict is matched by every *NameConflictError.
	ErrNameConflict = errors.New("name already exists")

	// ErrVersionMismatch is matched by every *VersionMismatchError.
	ErrVersionMismatch = errors.New("incompatible data version")

	// ErrFamilyMismatch is returned when merging snapshots from different families.
	ErrFamilyMismatch = errors.New("language families differ")
)

// NameConflictError is returned when a language or protolanguage with the
// same name already exists in its collection.
type NameConflictError struct {
	Kind Kind
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("the %s named %s already exists", e.Kind, e.Name)
}

// Is lets errors.Is(err, ErrNameConflict) match.
func (e *NameConflictError) Is(target error) bool {
	return target == ErrNameConflict
}

// InvalidAncestorError describes an ancestor name that resolves to no
// protolanguage. It is logged during resolution and never returned from
// get or set.
type InvalidAncestorError struct {
	Language string
	Ancestor string
}

func (e *InvalidAncestorError) Error() string {
	return fmt.Sprintf("invalid ancestor in %s: %s", e.Language, e.Ancestor)
}

// VersionMismatchError is returned when a snapshot's data version falls
// outside the range the running build can read.
type VersionMismatchError struct {
	Found    string
	Expected string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("data version %s is not compatible with %s", e.Found, e.Expected)
}

// Unwrap returns ErrVersionMismatch.
func (e *VersionMismatchError) Unwrap() error {
	return ErrVersionMismatch
}

// NewFamilyMismatchError wraps ErrFamilyMismatch with both family ids.
func NewFamilyMismatchError(self, incoming uuid.UUID) error {
	return fmt.Errorf("%w: project family %s, incoming family %s", ErrFamilyMismatch, self, incoming)
}
