package wisp

import "errors"

// ErrEventChannelClosed is returned by engine operations once the event
// receiver has gone away and events can no longer be published.
var ErrEventChannelClosed = errors.New("wisp: event channel closed")

// ErrIDSpaceExhausted is returned by Notify when the saturating id
// allocator has reached its maximum and cannot mint a new id. The
// allocator never reuses an id while it is still live, so this can only
// happen after sustained, extremely high notification volume.
var ErrIDSpaceExhausted = errors.New("wisp: notification id space exhausted")
