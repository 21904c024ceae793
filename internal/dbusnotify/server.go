// Package dbusnotify exports a wisp.Engine as the org.freedesktop.Notifications
// D-Bus service: method dispatch, introspection, and signal emission.
package dbusnotify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/0xferrous/wispd/internal/wisp"
)

// Server implements the org.freedesktop.Notifications interface by
// forwarding every method call to a wisp.Engine and emitting the engine's
// signals back onto the bus it owns.
type Server struct {
	cfg    wisp.SourceConfig
	engine *wisp.Engine
	logger *slog.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	running bool
}

// NewServer wraps engine for export under cfg's bus name/path. The server
// registers itself with the engine as its SignalEmitter.
func NewServer(cfg wisp.SourceConfig, engine *wisp.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, engine: engine, logger: logger}
	engine.SetSignalEmitter(s)
	return s
}

// Start connects to the session bus, exports the interface and its
// introspection data, and requests ownership of cfg.DBusName. It does not
// queue for the name: an already-owned name is a startup error.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return newStartupError(fmt.Errorf("server already running"))
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return newStartupError(fmt.Errorf("connect to session bus: %w", err))
	}

	if err := conn.Export(s, dbus.ObjectPath(s.cfg.DBusPath), wisp.DBusInterface); err != nil {
		return newStartupError(fmt.Errorf("export object: %w", err))
	}
	if err := conn.Export(s, dbus.ObjectPath(s.cfg.DBusPath), DebugInterface); err != nil {
		return newStartupError(fmt.Errorf("export debug interface: %w", err))
	}

	node := &introspect.Node{
		Name: s.cfg.DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    wisp.DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
			{
				Name:    DebugInterface,
				Methods: debugMethods(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), dbus.ObjectPath(s.cfg.DBusPath),
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return newStartupError(fmt.Errorf("export introspectable: %w", err))
	}

	reply, err := conn.RequestName(s.cfg.DBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return newStartupError(fmt.Errorf("request bus name: %w", err))
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return newStartupError(fmt.Errorf("bus name %s already taken", s.cfg.DBusName))
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("dbus notification service started", "name", s.cfg.DBusName, "path", s.cfg.DBusPath)
	return nil
}

// Close releases the bus name. The underlying connection is the shared
// session bus connection and is not closed.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(s.cfg.DBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}
	s.logger.Info("dbus notification service stopped")
	return nil
}

// GetCapabilities implements org.freedesktop.Notifications.GetCapabilities.
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	return s.engine.Capabilities(), nil
}

// GetServerInformation implements org.freedesktop.Notifications.GetServerInformation.
func (s *Server) GetServerInformation() (string, string, string, string, *dbus.Error) {
	name, vendor, version, specVersion := s.engine.ServerInformation()
	return name, vendor, version, specVersion, nil
}

// Notify implements org.freedesktop.Notifications.Notify.
func (s *Server) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	s.logger.Debug("Notify called", "app_name", appName, "replaces_id", replacesID, "summary", summary)

	urgency, parsedHints := wisp.ParseHints(variantsToAny(hints))
	n := wisp.Notification{
		AppName:   appName,
		AppIcon:   appIcon,
		Summary:   summary,
		Body:      body,
		Urgency:   urgency,
		TimeoutMs: expireTimeout,
		Actions:   wisp.ParseActions(actions),
		Hints:     parsedHints,
	}

	id, err := s.engine.Notify(n, replacesID)
	if err != nil {
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

// DebugInterface is a wispd-specific extension alongside the standard
// org.freedesktop.Notifications interface, giving wisp-debug a way to list
// currently-live notifications (the standard interface has no such method).
const DebugInterface = "org.freedesktop.wispd.Debug"

// ListNotifications implements org.freedesktop.wispd.Debug.ListNotifications,
// returning the ids, app names, and summaries of all currently-live
// notifications held by the engine.
func (s *Server) ListNotifications() ([]uint32, []string, []string, *dbus.Error) {
	snapshot := s.engine.Snapshot()
	ids := make([]uint32, 0, len(snapshot))
	appNames := make([]string, 0, len(snapshot))
	summaries := make([]string, 0, len(snapshot))
	for id, n := range snapshot {
		ids = append(ids, id)
		appNames = append(appNames, n.AppName)
		summaries = append(summaries, n.Summary)
	}
	return ids, appNames, summaries, nil
}

// CloseNotification implements org.freedesktop.Notifications.CloseNotification.
func (s *Server) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "id", id)
	if _, err := s.engine.Close(id, wisp.CloseReasonClosedByCall); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// EmitNotificationClosed implements wisp.SignalEmitter by emitting the
// NotificationClosed signal on the bus connection this server owns.
func (s *Server) EmitNotificationClosed(id uint32, reason wisp.CloseReason) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Emit(dbus.ObjectPath(s.cfg.DBusPath), wisp.DBusInterface+".NotificationClosed",
		id, uint32(reason)); err != nil {
		s.logger.Warn("failed to emit NotificationClosed signal", "id", id, "error", err)
	}
}

// EmitActionInvoked implements wisp.SignalEmitter by emitting the
// ActionInvoked signal on the bus connection this server owns.
func (s *Server) EmitActionInvoked(id uint32, actionKey string) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Emit(dbus.ObjectPath(s.cfg.DBusPath), wisp.DBusInterface+".ActionInvoked",
		id, actionKey); err != nil {
		s.logger.Warn("failed to emit ActionInvoked signal", "id", id, "error", err)
	}
}

func variantsToAny(hints map[string]dbus.Variant) map[string]any {
	out := make(map[string]any, len(hints))
	for k, v := range hints {
		out[k] = v.Value()
	}
	return out
}

func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

func debugMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "ListNotifications",
			Args: []introspect.Arg{
				{Name: "ids", Type: "au", Direction: "out"},
				{Name: "app_names", Type: "as", Direction: "out"},
				{Name: "summaries", Type: "as", Direction: "out"},
			},
		},
	}
}

func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
