package models

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// NewID returns a positive 64-bit identifier derived from a random UUID.
// Uniqueness is ultimately enforced by the store's primary key constraint;
// the generator only has to make collisions negligible within a store's
// lifetime, which 63 random bits do.
func NewID() int64 {
	u := uuid.New()
	id := int64(binary.BigEndian.Uint64(u[:8]) & 0x7FFFFFFFFFFFFFFF)
	if id == 0 {
		return NewID()
	}
	return id
}
