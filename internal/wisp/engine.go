package wisp

import (
	"log/slog"
	"sync"
	"time"
)

// SignalEmitter is implemented by a bus adapter that wants the engine to
// push NotificationClosed/ActionInvoked signals as a side effect of
// Close/InvokeAction/expiration. An engine with no emitter attached simply
// skips signal emission — this lets the core be unit tested with no bus at
// all, the same separation of concerns wisp-source keeps between the
// in-memory engine and its optional zbus connection.
type SignalEmitter interface {
	EmitNotificationClosed(id uint32, reason CloseReason)
	EmitActionInvoked(id uint32, actionKey string)
}

// Engine is the in-memory notification source: the generation-tagged store,
// the saturating id allocator, the bounded event channel, and the
// notify/close/invoke_action/snapshot operations that hold the invariants
// from the component design. It is safe for concurrent use.
type Engine struct {
	cfg    SourceConfig
	logger *slog.Logger

	store *notificationStore
	ids   *idAllocator
	bus   *eventBus

	mu               sync.RWMutex
	emitter          SignalEmitter
	capabilities     []string
	defaultTimeoutMs int32
}

// NewEngine creates an Engine and returns it together with the receive side
// of its event channel.
func NewEngine(cfg SourceConfig, logger *slog.Logger) (*Engine, <-chan NotificationEvent) {
	if logger == nil {
		logger = slog.Default()
	}
	bus := newEventBus(cfg.ChannelCapacity, logger)
	e := &Engine{
		cfg:              cfg,
		logger:           logger,
		store:            newNotificationStore(),
		ids:              newIDAllocator(),
		bus:              bus,
		capabilities:     cfg.Capabilities,
		defaultTimeoutMs: cfg.DefaultTimeoutMs,
	}
	return e, bus.receiver()
}

// UpdateRuntimeConfig applies the reloadable subset of configuration —
// capabilities and the default notification timeout — to the live engine.
// Everything else (bus name/path, server identity) is fixed at startup and
// requires a restart to change.
func (e *Engine) UpdateRuntimeConfig(capabilities []string, defaultTimeoutMs int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.capabilities = capabilities
	e.defaultTimeoutMs = defaultTimeoutMs
}

// SetSignalEmitter attaches (or detaches, with nil) the bus adapter used to
// emit NotificationClosed/ActionInvoked signals.
func (e *Engine) SetSignalEmitter(emitter SignalEmitter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitter = emitter
}

// Close shuts the engine's event channel down; no further events are
// delivered and any pending Notify/Close/InvokeAction call will observe
// ErrEventChannelClosed.
func (e *Engine) Close() {
	e.bus.close()
}

// Capabilities returns the configured GetCapabilities response.
func (e *Engine) Capabilities() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.capabilities
}

// ServerInformation returns the (name, vendor, version, spec_version) tuple
// returned by GetServerInformation.
func (e *Engine) ServerInformation() (name, vendor, version, specVersion string) {
	return e.cfg.ServerName, e.cfg.ServerVendor, e.cfg.ServerVersion, e.cfg.SpecVersion
}

// Snapshot returns a point-in-time copy of every currently live notification.
func (e *Engine) Snapshot() map[uint32]Notification {
	return e.store.snapshot()
}

// Notify inserts a new notification, or — when replacesID refers to a
// currently live entry — replaces it in place under the same id and bumps
// its generation. When replacesID is non-zero but does not (or no longer)
// refer to a live entry, a fresh id is allocated instead, matching the
// fallthrough behavior of the reference implementation.
func (e *Engine) Notify(n Notification, replacesID uint32) (uint32, error) {
	if replacesID != 0 {
		if previous, generation, ok := e.store.replaceInPlace(replacesID, n); ok {
			e.scheduleTimeout(replacesID, generation, n.TimeoutMs)
			if err := e.sendEvent(NotificationEvent{
				Kind:     EventReplaced,
				ID:       replacesID,
				Previous: previous,
				Current:  n,
			}); err != nil {
				return 0, err
			}
			return replacesID, nil
		}
	}

	id, ok := e.ids.alloc()
	if !ok {
		return 0, ErrIDSpaceExhausted
	}

	e.store.insert(id, n)
	e.scheduleTimeout(id, 0, n.TimeoutMs)
	if err := e.sendEvent(NotificationEvent{
		Kind:         EventReceived,
		ID:           id,
		Notification: n,
	}); err != nil {
		return 0, err
	}
	return id, nil
}

// NotifyInternal lets the daemon itself push a notification through the
// engine — e.g. to surface a config-reload failure to the user the same
// way an application's Notify call would. It always allocates a fresh id
// (never a replacement) and never returns an error: a failure (an exhausted
// id space, or a closed event channel when publishing the Received event)
// is logged and 0 is returned, since there is no caller on the other end of
// a D-Bus method reply to hand an error back to. In the closed-channel case
// the notification has already been stored and stays live.
func (e *Engine) NotifyInternal(n Notification) uint32 {
	id, err := e.Notify(n, 0)
	if err != nil {
		e.logger.Warn("failed to deliver internal notification", "summary", n.Summary, "error", err)
		return 0
	}
	return id
}

// Close removes id and emits a Closed event with the given reason.
// Returns false if id was not live.
func (e *Engine) Close(id uint32, reason CloseReason) (bool, error) {
	if !e.store.remove(id) {
		return false, nil
	}
	if err := e.sendClosed(id, reason); err != nil {
		return true, err
	}
	return true, nil
}

// InvokeAction invokes actionKey on notification id. On success it emits an
// ActionInvoked event and signal, then closes the notification as
// Dismissed. Returns false if id is not live or does not have that action
// key — in the latter case the notification is left untouched.
func (e *Engine) InvokeAction(id uint32, actionKey string) (bool, error) {
	if _, ok := e.store.removeIfActionPresent(id, actionKey); !ok {
		return false, nil
	}

	if err := e.sendEvent(NotificationEvent{
		Kind:      EventActionInvoked,
		ID:        id,
		ActionKey: actionKey,
	}); err != nil {
		return true, err
	}
	e.emitActionInvoked(id, actionKey)

	if err := e.sendClosed(id, CloseReasonDismissed); err != nil {
		return true, err
	}
	return true, nil
}

func (e *Engine) sendClosed(id uint32, reason CloseReason) error {
	if err := e.sendEvent(NotificationEvent{Kind: EventClosed, ID: id, Reason: reason}); err != nil {
		return err
	}
	e.emitNotificationClosed(id, reason)
	return nil
}

func (e *Engine) sendEvent(event NotificationEvent) error {
	return e.bus.send(event)
}

func (e *Engine) emitNotificationClosed(id uint32, reason CloseReason) {
	e.mu.RLock()
	emitter := e.emitter
	e.mu.RUnlock()
	if emitter != nil {
		emitter.EmitNotificationClosed(id, reason)
	}
}

func (e *Engine) emitActionInvoked(id uint32, actionKey string) {
	e.mu.RLock()
	emitter := e.emitter
	e.mu.RUnlock()
	if emitter != nil {
		emitter.EmitActionInvoked(id, actionKey)
	}
}

// scheduleTimeout arms a one-shot timer that expires id if, once it fires,
// the stored generation still matches the generation captured here. A
// requested timeout of 0 means never expire (no timer is armed); a negative
// value uses the configured default; a positive value is used as-is.
func (e *Engine) scheduleTimeout(id uint32, generation uint64, requestedTimeoutMs int32) {
	duration, ok := e.effectiveTimeoutDuration(requestedTimeoutMs)
	if !ok {
		return
	}

	time.AfterFunc(duration, func() {
		e.expireIfCurrent(id, generation)
	})
}

func (e *Engine) effectiveTimeoutDuration(requestedTimeoutMs int32) (time.Duration, bool) {
	var effectiveMs int32
	switch {
	case requestedTimeoutMs == 0:
		return 0, false
	case requestedTimeoutMs < 0:
		e.mu.RLock()
		effectiveMs = e.defaultTimeoutMs
		e.mu.RUnlock()
	default:
		effectiveMs = requestedTimeoutMs
	}
	if effectiveMs <= 0 {
		return 0, false
	}
	return time.Duration(effectiveMs) * time.Millisecond, true
}

func (e *Engine) expireIfCurrent(id uint32, generation uint64) {
	if !e.store.removeIfGeneration(id, generation) {
		return
	}
	if err := e.sendClosed(id, CloseReasonExpired); err != nil {
		e.logger.Warn("failed to process timeout expiration", "id", id, "error", err)
	}
}
