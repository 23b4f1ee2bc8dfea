package book

import (
	"strings"

	"github.com/google/uuid"
)

// GUID identifies an entity of a book: 32 lowercase hexadecimal characters.
type GUID string

// NewGUID returns a new random GUID.
func NewGUID() GUID {
	return GUID(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Valid reports whether g has the GUID format.
func (g GUID) Valid() bool {
	if len(g) != 32 {
		return false
	}
	for _, c := range g {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
