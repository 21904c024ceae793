package dbusnotify

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xferrous/wispd/internal/wisp"
)

func newTestServer(t *testing.T) (*Server, *wisp.Engine, <-chan wisp.NotificationEvent) {
	t.Helper()
	cfg := wisp.DefaultSourceConfig()
	engine, events := wisp.NewEngine(cfg, nil)
	srv := NewServer(cfg, engine, nil)
	return srv, engine, events
}

func TestServer_NotifyAllocatesIDAndEmitsEvent(t *testing.T) {
	srv, _, events := newTestServer(t)

	id, derr := srv.Notify("testapp", 0, "icon", "hello", "world",
		nil, map[string]dbus.Variant{}, -1)
	require.Nil(t, derr)
	assert.NotZero(t, id)

	select {
	case ev := <-events:
		assert.Equal(t, wisp.EventReceived, ev.Kind)
		assert.Equal(t, id, ev.ID)
		assert.Equal(t, "hello", ev.Notification.Summary)
	default:
		t.Fatal("expected an event to be published")
	}
}

func TestServer_NotifyParsesActionsAndHints(t *testing.T) {
	srv, _, events := newTestServer(t)

	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(byte(2)),
		"category": dbus.MakeVariant("email"),
	}
	id, derr := srv.Notify("testapp", 0, "icon", "s", "b",
		[]string{"default", "OK"}, hints, 0)
	require.Nil(t, derr)

	ev := <-events
	assert.Equal(t, id, ev.ID)
	assert.Equal(t, wisp.UrgencyCritical, ev.Notification.Urgency)
	assert.Equal(t, "email", ev.Notification.Hints.Category)
	require.Len(t, ev.Notification.Actions, 1)
	assert.Equal(t, "default", ev.Notification.Actions[0].Key)
}

func TestServer_CloseNotificationRemovesEntry(t *testing.T) {
	srv, engine, _ := newTestServer(t)

	id, derr := srv.Notify("app", 0, "", "s", "b", nil, map[string]dbus.Variant{}, 0)
	require.Nil(t, derr)

	derr = srv.CloseNotification(id)
	assert.Nil(t, derr)

	_, ok := engine.Snapshot()[id]
	assert.False(t, ok)
}

func TestServer_ListNotificationsReflectsLiveEntries(t *testing.T) {
	srv, _, _ := newTestServer(t)

	id, derr := srv.Notify("app", 0, "", "summary-1", "body", nil, map[string]dbus.Variant{}, 0)
	require.Nil(t, derr)

	ids, appNames, summaries, derr := srv.ListNotifications()
	require.Nil(t, derr)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])
	assert.Equal(t, "app", appNames[0])
	assert.Equal(t, "summary-1", summaries[0])
}

func TestServer_GetCapabilitiesAndServerInformation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	caps, derr := srv.GetCapabilities()
	require.Nil(t, derr)
	assert.Contains(t, caps, "body")

	name, vendor, version, specVersion, derr := srv.GetServerInformation()
	require.Nil(t, derr)
	assert.Equal(t, "wispd", name)
	assert.Equal(t, "wispd", vendor)
	assert.NotEmpty(t, version)
	assert.Equal(t, "1.2", specVersion)
}

func TestServer_EmitWithoutConnIsNoop(t *testing.T) {
	srv, _, _ := newTestServer(t)
	assert.NotPanics(t, func() {
		srv.EmitNotificationClosed(1, wisp.CloseReasonExpired)
		srv.EmitActionInvoked(1, "default")
	})
}

func TestVariantsToAny_ConvertsValues(t *testing.T) {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(1)),
	}
	out := variantsToAny(hints)
	assert.Equal(t, byte(1), out["urgency"])
}

func TestNotificationMethodsAndSignals_AreWellFormed(t *testing.T) {
	methods := notificationMethods()
	assert.Len(t, methods, 4)

	signals := notificationSignals()
	assert.Len(t, signals, 2)
}
