package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenCmdReturnsEvent(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	cmd := ListenCmd(ctx, ch)

	b.Publish(RefreshedEvent, "payload")

	msg := cmd()
	ev, ok := msg.(Event[string])
	require.True(t, ok, "expected Event[string], got %T", msg)
	assert.Equal(t, "payload", ev.Payload)
}

func TestListenCmdReturnsNilOnCancel(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cmd := ListenCmd(ctx, ch)

	cancel()
	assert.Nil(t, cmd())
}

func TestContinuousListenerReceivesSequence(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewContinuousListener(ctx, b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 3; i++ {
			msg := listener.Listen()()
			ev, ok := msg.(Event[int])
			assert.True(t, ok)
			assert.Equal(t, i, ev.Payload)
		}
	}()

	for i := 1; i <= 3; i++ {
		b.Publish(ChangedEvent, i)
		time.Sleep(5 * time.Millisecond)
	}
	<-done
}
