package popup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xferrous/wispd/internal/wisp"
)

func TestConsumer_RunStopsWhenChannelCloses(t *testing.T) {
	ch := make(chan wisp.NotificationEvent)
	engine, _ := wisp.NewEngine(wisp.DefaultSourceConfig(), nil)
	c := NewConsumer(ch, engine, nil)

	done := make(chan struct{})
	go func() {
		c.Run(context.Background())
		close(done)
	}()

	close(ch)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel closed")
	}
}

func TestConsumer_RunStopsOnContextCancel(t *testing.T) {
	ch := make(chan wisp.NotificationEvent)
	engine, _ := wisp.NewEngine(wisp.DefaultSourceConfig(), nil)
	c := NewConsumer(ch, engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestConsumer_DismissClosesNotification(t *testing.T) {
	engine, events := wisp.NewEngine(wisp.DefaultSourceConfig(), nil)
	c := NewConsumer(events, engine, nil)

	id, err := engine.Notify(wisp.Notification{AppName: "app", Summary: "s"}, 0)
	require.NoError(t, err)
	<-events

	require.NoError(t, c.Dismiss(id))
	_, ok := engine.Snapshot()[id]
	assert.False(t, ok)
}

func TestConsumer_InvokeForwardsActionToEngine(t *testing.T) {
	engine, events := wisp.NewEngine(wisp.DefaultSourceConfig(), nil)
	c := NewConsumer(events, engine, nil)

	id, err := engine.Notify(wisp.Notification{
		AppName: "app", Summary: "s",
		Actions: []wisp.NotificationAction{{Key: "default", Label: "Open"}},
	}, 0)
	require.NoError(t, err)
	<-events

	require.NoError(t, c.Invoke(id, "default"))

	ev := <-events
	assert.Equal(t, wisp.EventActionInvoked, ev.Kind)
	assert.Equal(t, "default", ev.ActionKey)
}
