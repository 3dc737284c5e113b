package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	// StudyFingerprint identifies the exact input data of an evaluation run.
	// Identical inputs must produce identical fingerprints so that regulatory
	// reports are reproducible.
	StudyFingerprint Hash
)

// NewStudyFingerprint creates a fingerprint hash from raw bytes
func NewStudyFingerprint(data []byte) StudyFingerprint { return StudyFingerprint(NewHash(data)) }

// String conversion
func (h StudyFingerprint) String() string { return Hash(h).String() }

// ComputeStudyFingerprint produces a deterministic fingerprint for an
// evaluation run from its endpoint keys and the ordered dose list.
// Endpoint keys are sorted so that map iteration order never leaks in.
func ComputeStudyFingerprint(studyID StudyID, doseValues []float64, endpointKeys []string) StudyFingerprint {
	sorted := make([]string, len(endpointKeys))
	copy(sorted, endpointKeys)
	sort.Strings(sorted)

	var data strings.Builder
	data.WriteString(studyID.String())
	for _, d := range doseValues {
		data.WriteString(fmt.Sprintf("|%g", d))
	}
	for _, k := range sorted {
		data.WriteString("|")
		data.WriteString(k)
	}

	return NewStudyFingerprint([]byte(data.String()))
}
