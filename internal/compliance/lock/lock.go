// Package lock serializes evaluations per client. The aggregate rules read
// same-day history, so two submissions for one client must not evaluate
// against the same snapshot.
package lock

import (
	"context"
	"sync"

	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

// Memory is an in-process keyed mutex.
type Memory struct {
	mu    sync.Mutex
	slots map[id.ClientID]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[id.ClientID]*slot)}
}

// Lock blocks until clientID is free or ctx is done. The returned func
// releases the lock and must be called exactly once.
func (m *Memory) Lock(ctx context.Context, clientID id.ClientID) (func(), error) {
	m.mu.Lock()
	sl, ok := m.slots[clientID]
	if !ok {
		sl = &slot{ch: make(chan struct{}, 1)}
		m.slots[clientID] = sl
	}
	sl.refs++
	m.mu.Unlock()

	select {
	case sl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-sl.ch
				m.release(clientID, sl)
			})
		}, nil
	case <-ctx.Done():
		m.release(clientID, sl)
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for client lock")
	}
}

func (m *Memory) release(clientID id.ClientID, sl *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(m.slots, clientID)
	}
}

// held reports how many clients currently have a slot; used by tests.
func (m *Memory) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
