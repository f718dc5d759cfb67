package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

func TestMemory_SerializesPerClient(t *testing.T) {
	m := NewMemory()
	clientID := id.NewClientID()

	var (
		wg       sync.WaitGroup
		inFlight atomic.Int32
		maxSeen  atomic.Int32
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), clientID)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := inFlight.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, m.held(), "slots are released once nobody waits")
}

func TestMemory_DifferentClientsDoNotBlock(t *testing.T) {
	m := NewMemory()
	unlockA, err := m.Lock(context.Background(), id.NewClientID())
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx, id.NewClientID())
	require.NoError(t, err)
	unlockB()
}

func TestMemory_ContextCancelled(t *testing.T) {
	m := NewMemory()
	clientID := id.NewClientID()
	unlock, err := m.Lock(context.Background(), clientID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, clientID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))

	unlock()
	unlock()
	assert.Zero(t, m.held(), "double unlock is harmless")

	again, err := m.Lock(context.Background(), clientID)
	require.NoError(t, err)
	again()
}
