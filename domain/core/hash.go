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

// Short returns the first 16 hex characters, enough for an ETag.
func (h Hash) Short() string {
	if len(h) <= 16 {
		return string(h)
	}
	return string(h[:16])
}

// ComputeRenderHash fingerprints a render: the chart identity, its last update,
// and the selection the render was made for. Selection order matters because
// selection indexes are positional.
func ComputeRenderHash(chartID ID, version string, selected []string, params map[string]string) Hash {
	var data strings.Builder
	data.WriteString(chartID.String())
	data.WriteByte(0)
	data.WriteString(version)
	for _, s := range selected {
		data.WriteByte(0)
		data.WriteString(s)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		data.WriteString(fmt.Sprintf("\x01%s=%s", key, params[key]))
	}

	return NewHash([]byte(data.String()))
}
