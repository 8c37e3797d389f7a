package model

import "github.com/oklog/ulid/v2"

// NewID returns a new record id. ULIDs sort by creation time.
func NewID() string {
	return ulid.Make().String()
}
