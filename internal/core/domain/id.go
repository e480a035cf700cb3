package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewShortID returns prefix followed by 8 random hex characters.
func NewShortID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + hex[:8]
}
