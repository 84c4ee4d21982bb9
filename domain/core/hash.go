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
	GridHash      Hash
	RecordSetHash Hash
)

// Constructors
func NewGridHash(data []byte) GridHash           { return GridHash(NewHash(data)) }
func NewRecordSetHash(data []byte) RecordSetHash { return RecordSetHash(NewHash(data)) }

// String conversions
func (h GridHash) String() string      { return Hash(h).String() }
func (h RecordSetHash) String() string { return Hash(h).String() }

// ComputeGridHash fingerprints a raw cell grid so repeated runs over the
// same file can be detected without re-parsing.
func ComputeGridHash(rows [][]string) GridHash {
	var data strings.Builder
	for _, row := range rows {
		for _, cell := range row {
			data.WriteString(cell)
			data.WriteByte(0x1f)
		}
		data.WriteByte(0x1e)
	}
	return NewGridHash([]byte(data.String()))
}

// ComputeRecordSetHash fingerprints normalized output. Field maps are
// walked in sorted key order so equal record sets always hash equal.
func ComputeRecordSetHash(records []map[string]interface{}) RecordSetHash {
	var data strings.Builder
	for _, record := range records {
		keys := make([]string, 0, len(record))
		for k := range record {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			data.WriteString(key)
			data.WriteString(fmt.Sprintf("%v", record[key]))
		}
		data.WriteByte(0x1e)
	}
	return NewRecordSetHash([]byte(data.String()))
}
