package util

import (
	"time"

	"github.com/google/uuid"
)

// NewID gera UUID v7, ordenável pelo instante de criação.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Now devolve o instante atual em UTC.
func Now() time.Time {
	return time.Now().UTC()
}
