package mocks

import (
	"strconv"
	"sync"

	"github.com/mcoot/gomoku-server/internal/dependencies/idgen"
	"github.com/mcoot/gomoku-server/internal/model"
)

// MockIDs is a mock implementation of idgen.Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// Results is a queue of handles to return before falling back to a counter
	Results []model.ConnID
	index   int
	counter int
}

// Ensure MockIDs implements Generator
var _ idgen.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewConnID returns the next queued handle, or "conn-N" once the queue is drained
func (g *MockIDs) NewConnID() model.ConnID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.index < len(g.Results) {
		result := g.Results[g.index]
		g.index++
		return result
	}
	g.counter++
	return model.ConnID("conn-" + strconv.Itoa(g.counter))
}

// Queue adds handles to the result queue
func (g *MockIDs) Queue(ids ...model.ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Results = append(g.Results, ids...)
}
