package mock

import (
	"context"
	"sync"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// Dispatcher implements task dispatching for tests.
type Dispatcher struct {
	mu sync.Mutex

	Called bool
	IDs    []uuid.UUID
	Forced []bool
	Err    error
	// ErrFor fails only the listed ids.
	ErrFor map[uuid.UUID]error
}

var _ port.TaskDispatcher = (*Dispatcher)(nil)

func (m *Dispatcher) EnqueueProcessImage(ctx context.Context, fileID uuid.UUID, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called = true
	if err := m.ErrFor[fileID]; err != nil {
		return err
	}
	if m.Err != nil {
		return m.Err
	}
	m.IDs = append(m.IDs, fileID)
	m.Forced = append(m.Forced, force)
	return nil
}
