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
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
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

// Domain-specific ID types
type (
	StudyID     ID
	RunID       ID
	EndpointKey ID
)

// String conversions for domain IDs
func (id StudyID) String() string     { return ID(id).String() }
func (id RunID) String() string       { return ID(id).String() }
func (id EndpointKey) String() string { return ID(id).String() }

// ParseStudyID parses a string into StudyID
func ParseStudyID(s string) (StudyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("study ID cannot be empty")
	}
	return StudyID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseEndpointKey parses a string into EndpointKey
func ParseEndpointKey(s string) (EndpointKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("endpoint key cannot be empty")
	}
	return EndpointKey(s), nil
}

// NewEndpointKey builds the canonical (endpoint, sex) key used throughout
// the evaluation pipeline
func NewEndpointKey(label, sex string) EndpointKey {
	return EndpointKey(fmt.Sprintf("%s|%s", label, sex))
}
