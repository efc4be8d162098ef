package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 generation fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// TableID identifies one immutable table value. Every transform output gets a
// fresh TableID and remembers the TableID it was derived from.
type TableID ID

// NewTableID returns a fresh, time-ordered table identifier.
func NewTableID() TableID { return TableID(NewID()) }

func (id TableID) String() string { return ID(id).String() }

// IsEmpty reports whether the identifier is unset (a root table has no parent).
func (id TableID) IsEmpty() bool { return ID(id).IsEmpty() }

// ParseTableID parses a string into TableID
func ParseTableID(s string) (TableID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: table ID cannot be empty", ErrInvalidArgument)
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("%w: table ID %q: %v", ErrInvalidArgument, s, err)
	}
	return TableID(s), nil
}
