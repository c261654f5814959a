package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionManager_EmitReachesAllSubscribers(t *testing.T) {
	mgr := NewSubscriptionManager()

	first := mgr.Subscribe()
	second := mgr.Subscribe()
	defer first.Cancel()
	defer second.Cancel()

	mgr.Emit(context.Background())

	for _, sub := range []*Subscription{first, second} {
		select {
		case <-sub.Chan():
		case <-time.After(time.Second):
			t.Fatal("subscriber was not notified")
		}
	}
}

func TestSubscriptionManager_EmitDoesNotBlockOnFullChannel(t *testing.T) {
	mgr := NewSubscriptionManager()

	sub := mgr.Subscribe()
	defer sub.Cancel()

	// Channel capacity is 1; extra emits are dropped, not queued
	mgr.Emit(context.Background())
	mgr.Emit(context.Background())
	mgr.Emit(context.Background())

	<-sub.Chan()
	select {
	case <-sub.Chan():
		t.Fatal("expected coalesced notifications")
	default:
	}
}

func TestSubscription_CancelClosesChannel(t *testing.T) {
	mgr := NewSubscriptionManager()

	sub := mgr.Subscribe()
	sub.Cancel()
	sub.Cancel()

	_, open := <-sub.Chan()
	assert.False(t, open)

	// Emitting after cancel must not panic
	mgr.Emit(context.Background())
}

func TestSubscription_Watch(t *testing.T) {
	mgr := NewSubscriptionManager()

	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := mgr.Subscribe().Watch(ctx, func() {
		atomic.AddInt32(&calls, 1)
	}, true)
	defer sub.Cancel()

	// callNow fired once already
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	mgr.Emit(context.Background())
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestSubscription_WatchStopsOnParentContext(t *testing.T) {
	mgr := NewSubscriptionManager()

	var calls int32
	ctx, cancel := context.WithCancel(context.Background())

	mgr.Subscribe().Watch(ctx, func() {
		atomic.AddInt32(&calls, 1)
	}, false)

	cancel()
	time.Sleep(50 * time.Millisecond)

	mgr.Emit(context.Background())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
