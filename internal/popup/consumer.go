// Package popup is the minimal UI-side collaborator described by spec: it
// drains a notification event channel and may call back into the engine to
// dismiss a notification or invoke one of its actions. It renders events as
// structured log lines rather than on-screen popups — actual rendering is
// out of scope for this repository.
package popup

import (
	"context"
	"log/slog"

	"github.com/0xferrous/wispd/internal/wisp"
)

// Closer is the subset of *wisp.Engine a Consumer needs in order to act on
// events it has rendered.
type Closer interface {
	Close(id uint32, reason wisp.CloseReason) (bool, error)
	InvokeAction(id uint32, actionKey string) (bool, error)
}

// Consumer drains a notification event channel, logs each event, and
// forwards Dismiss/Invoke calls back to the engine that produced them.
type Consumer struct {
	events <-chan wisp.NotificationEvent
	engine Closer
	logger *slog.Logger
}

// NewConsumer creates a Consumer reading from events and acting against
// engine.
func NewConsumer(events <-chan wisp.NotificationEvent, engine Closer, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{events: events, engine: engine, logger: logger}
}

// Run drains events until the channel closes or ctx is cancelled, logging
// each one. It returns when either happens.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				c.logger.Debug("popup consumer: event channel closed")
				return
			}
			c.logEvent(ev)
		case <-ctx.Done():
			c.logger.Debug("popup consumer: context cancelled")
			return
		}
	}
}

func (c *Consumer) logEvent(ev wisp.NotificationEvent) {
	switch ev.Kind {
	case wisp.EventReceived:
		c.logger.Info("notification received",
			"id", ev.ID, "app", ev.Notification.AppName, "summary", ev.Notification.Summary,
			"urgency", ev.Notification.Urgency.String())
	case wisp.EventReplaced:
		c.logger.Info("notification replaced",
			"id", ev.ID, "app", ev.Current.AppName, "summary", ev.Current.Summary)
	case wisp.EventActionInvoked:
		c.logger.Info("notification action invoked", "id", ev.ID, "action_key", ev.ActionKey)
	case wisp.EventClosed:
		c.logger.Info("notification closed", "id", ev.ID, "reason", ev.Reason.String())
	default:
		c.logger.Warn("unrecognized notification event kind", "kind", ev.Kind.String())
	}
}

// Dismiss closes the notification with the given id as if the user
// dismissed it on screen.
func (c *Consumer) Dismiss(id uint32) error {
	_, err := c.engine.Close(id, wisp.CloseReasonDismissed)
	return err
}

// Invoke forwards an action click for the given id and action key.
func (c *Consumer) Invoke(id uint32, actionKey string) error {
	_, err := c.engine.InvokeAction(id, actionKey)
	return err
}
