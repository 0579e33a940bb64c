package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/ibp/internal/model"
)

type syncNotifier struct {
	mu   sync.Mutex
	sent []uint
}

func (n *syncNotifier) Notify(_ context.Context, _ *model.Inmate, a model.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, a.AutoID)
	return nil
}

func (n *syncNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func TestAsyncNotifier_DeliversAndDrains(t *testing.T) {
	next := &syncNotifier{}
	n := NewAsyncNotifier(next, 16)
	stop := n.Start(2)

	in := &model.Inmate{Jurisdiction: model.JurisdictionTexas, ID: 1}
	for i := 1; i <= 5; i++ {
		require.NoError(t, n.Notify(context.Background(), in, model.Alert{AutoID: uint(i)}))
	}
	assert.Eventually(t, func() bool { return next.count() == 5 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
	assert.ElementsMatch(t, []uint{1, 2, 3, 4, 5}, next.sent)
}

func TestAsyncNotifier_QueueFull(t *testing.T) {
	// not started, so nothing drains the queue
	n := NewAsyncNotifier(&syncNotifier{}, 1)
	in := &model.Inmate{}
	require.NoError(t, n.Notify(context.Background(), in, model.Alert{AutoID: 1}))
	assert.ErrorIs(t, n.Notify(context.Background(), in, model.Alert{AutoID: 2}), ErrQueueFull)
	assert.Equal(t, 1, n.QueueLen())

	next := &syncNotifier{}
	n.next = next
	stop := n.Start(1)
	require.NoError(t, stop(context.Background()))
	assert.Equal(t, 1, next.count())
}

func TestAsyncNotifier_RejectsAfterStop(t *testing.T) {
	next := &syncNotifier{}
	n := NewAsyncNotifier(next, 4)
	stop := n.Start(1)
	require.NoError(t, stop(context.Background()))

	err := n.Notify(context.Background(), &model.Inmate{}, model.Alert{AutoID: 9})
	assert.ErrorIs(t, err, ErrNotifierStopped)
	assert.Zero(t, n.QueueLen())
	assert.Zero(t, next.count())

	// stopping twice is harmless
	require.NoError(t, stop(context.Background()))
}
