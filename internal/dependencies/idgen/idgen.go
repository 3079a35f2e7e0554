package idgen

import (
	"github.com/google/uuid"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Generator hands out connection handles. Tests substitute mocks.MockIDs to
// get predictable handles.
type Generator interface {
	NewConnID() model.ConnID
}

// UUIDGenerator implements Generator with random UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewConnID returns a fresh random connection handle
func (g *UUIDGenerator) NewConnID() model.ConnID {
	return model.ConnID(uuid.NewString())
}
