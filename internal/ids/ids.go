// Package ids generates identifiers for new entities. UUIDv7 keeps them sortable by
// creation time, so "ORDER BY id" matches insertion order.
package ids

import "github.com/google/uuid"

func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
