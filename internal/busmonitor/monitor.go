// Package busmonitor passively observes org.freedesktop.Notifications
// traffic on the session bus without owning the bus name, so it can run
// alongside a real notification server.
package busmonitor

import (
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/0xferrous/wispd/internal/wisp"
)

// Monitor captures Notify calls and NotificationClosed/ActionInvoked
// signals by eavesdropping, republishing them as wisp.NotificationEvent
// values on its own bounded channel. Because it never owns the bus, ids in
// Received events are a deterministic, non-authoritative hash of the
// notification's content rather than the real server-assigned id.
type Monitor struct {
	logger *slog.Logger
	conn   *dbus.Conn
	events chan wisp.NotificationEvent
}

// NewMonitor creates a monitor with the given event channel capacity.
func NewMonitor(capacity int, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger: logger,
		events: make(chan wisp.NotificationEvent, capacity),
	}
}

// Events returns the receive side of the monitor's event channel.
func (m *Monitor) Events() <-chan wisp.NotificationEvent {
	return m.events
}

// Start connects to the session bus and begins eavesdropping, preferring
// the modern BecomeMonitor call and falling back to the older
// eavesdrop='true' AddMatch form when BecomeMonitor is unavailable.
func (m *Monitor) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("busmonitor: connect to session bus: %w", err)
	}
	m.conn = conn

	rules := []string{
		fmt.Sprintf("type='method_call',interface='%s',member='Notify'", wisp.DBusInterface),
		fmt.Sprintf("type='signal',interface='%s',member='NotificationClosed'", wisp.DBusInterface),
		fmt.Sprintf("type='signal',interface='%s',member='ActionInvoked'", wisp.DBusInterface),
	}

	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor", 0, rules, uint32(0),
	).Err
	if err != nil {
		m.logger.Warn("BecomeMonitor not available, falling back to AddMatch", "error", err)
		return m.startWithAddMatch()
	}

	m.logger.Info("started bus monitor using BecomeMonitor")
	go m.processMessages()
	return nil
}

func (m *Monitor) startWithAddMatch() error {
	matchRules := []string{
		fmt.Sprintf("type='method_call',interface='%s',member='Notify',eavesdrop='true'", wisp.DBusInterface),
		fmt.Sprintf("type='signal',interface='%s',member='NotificationClosed'", wisp.DBusInterface),
		fmt.Sprintf("type='signal',interface='%s',member='ActionInvoked'", wisp.DBusInterface),
	}
	for _, matchRule := range matchRules {
		if err := m.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
			return fmt.Errorf("busmonitor: add match rule (eavesdrop may require permissions): %w", err)
		}
	}

	m.logger.Info("started bus monitor using AddMatch with eavesdrop")
	go m.processMessages()
	return nil
}

// Stop closes the session bus connection and the monitor's event channel.
func (m *Monitor) Stop() error {
	close(m.events)
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

func (m *Monitor) processMessages() {
	ch := make(chan *dbus.Message, 100)
	m.conn.Eavesdrop(ch)

	for msg := range ch {
		iface, _ := msg.Headers[dbus.FieldInterface].Value().(string)
		if iface != wisp.DBusInterface {
			continue
		}
		member, _ := msg.Headers[dbus.FieldMember].Value().(string)

		switch {
		case msg.Type == dbus.TypeMethodCall && member == "Notify":
			m.handleNotify(msg)
		case msg.Type == dbus.TypeSignal && member == "NotificationClosed":
			m.handleNotificationClosed(msg)
		case msg.Type == dbus.TypeSignal && member == "ActionInvoked":
			m.handleActionInvoked(msg)
		}
	}
}

func (m *Monitor) publish(event wisp.NotificationEvent) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn("monitor event queue full; dropping event", "kind", event.Kind.String())
	}
}

func (m *Monitor) handleNotify(msg *dbus.Message) {
	if len(msg.Body) < 8 {
		m.logger.Warn("malformed Notify call", "body_len", len(msg.Body))
		return
	}

	appName, ok1 := msg.Body[0].(string)
	appIcon, ok2 := msg.Body[2].(string)
	summary, ok3 := msg.Body[3].(string)
	body, ok4 := msg.Body[4].(string)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		m.logger.Warn("invalid Notify argument types")
		return
	}

	var flatActions []string
	if a, ok := msg.Body[5].([]string); ok {
		flatActions = a
	}
	var hints map[string]dbus.Variant
	if h, ok := msg.Body[6].(map[string]dbus.Variant); ok {
		hints = h
	}
	var expireTimeout int32
	if t, ok := msg.Body[7].(int32); ok {
		expireTimeout = t
	}

	urgency, parsedHints := wisp.ParseHints(variantsToAny(hints))
	n := wisp.Notification{
		AppName:   appName,
		AppIcon:   appIcon,
		Summary:   summary,
		Body:      body,
		Urgency:   urgency,
		TimeoutMs: expireTimeout,
		Actions:   wisp.ParseActions(flatActions),
		Hints:     parsedHints,
	}

	id := pseudoID(n)
	m.logger.Debug("captured notification", "app", n.AppName, "summary", n.Summary, "id", id)
	m.publish(wisp.NotificationEvent{Kind: wisp.EventReceived, ID: id, Notification: n})
}

func (m *Monitor) handleNotificationClosed(msg *dbus.Message) {
	if len(msg.Body) < 2 {
		return
	}
	id, ok1 := msg.Body[0].(uint32)
	reason, ok2 := msg.Body[1].(uint32)
	if !ok1 || !ok2 {
		return
	}
	m.publish(wisp.NotificationEvent{Kind: wisp.EventClosed, ID: id, Reason: wisp.CloseReason(reason)})
}

func (m *Monitor) handleActionInvoked(msg *dbus.Message) {
	if len(msg.Body) < 2 {
		return
	}
	id, ok1 := msg.Body[0].(uint32)
	actionKey, ok2 := msg.Body[1].(string)
	if !ok1 || !ok2 {
		return
	}
	m.publish(wisp.NotificationEvent{Kind: wisp.EventActionInvoked, ID: id, ActionKey: actionKey})
}

// pseudoID derives a deterministic, non-authoritative id for a monitored
// notification: the monitor never sees the real server-assigned id since
// it only eavesdrops on the method call, not its reply. It folds every
// field that distinguishes two otherwise-identical notifications (body,
// action count, urgency, timeout) into the FNV-1a digest rather than just
// app name and summary, so two different calls collide far less often.
func pseudoID(n wisp.Notification) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%d\x00%d",
		n.AppName, n.Summary, n.Body, len(n.Actions), n.Urgency, n.TimeoutMs)

	hash := h.Sum32()
	if hash == 0 {
		hash = 1
	}
	return hash
}

func variantsToAny(hints map[string]dbus.Variant) map[string]any {
	out := make(map[string]any, len(hints))
	for k, v := range hints {
		out[k] = v.Value()
	}
	return out
}
