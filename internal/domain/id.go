package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID builds the opaque record identifiers used throughout the store:
// prefix, creation instant in unix milliseconds, and a short random suffix.
func NewID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}
