package types

import (
	"github.com/google/uuid"
)

// NewRuleID generates a UUIDv7 rule identifier.
// Used when a rule is built without an explicit id.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsGeneratedRuleID reports whether id has the shape produced by NewRuleID.
func IsGeneratedRuleID(id string) bool {
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == 7
}
