package graph

import (
	"strings"

	"github.com/google/uuid"
)

// idLength is the number of hex characters kept from a random UUID.
const idLength = 10

// NewID returns a process-generated identifier such as "node-3f9a2c1b7e".
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + hex[:idLength]
}
