package domain

import "github.com/google/uuid"

// IsValidID reports whether id is a UUID in canonical lowercase form, the
// only form ids are issued in.
func IsValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}
