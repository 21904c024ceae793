package wisp

import "fmt"

// knownHintKeys are the hint keys parsed into first-class NotificationHints
// fields; everything else lands in Extra.
var knownHintKeys = map[string]bool{
	"urgency":       true,
	"category":      true,
	"desktop-entry": true,
	"transient":     true,
}

// ParseActions converts a flat, alternating key/label wire array into
// structured actions, discarding a trailing unpaired element the same way
// chunks_exact(2) does.
func ParseActions(flat []string) []NotificationAction {
	actions := make([]NotificationAction, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		actions = append(actions, NotificationAction{Key: flat[i], Label: flat[i+1]})
	}
	return actions
}

// hintValue abstracts over the wire representation a bus adapter extracts
// hint values from (dbus.Variant.Value(), in practice) so ParseHints has no
// dependency on godbus.
type hintValue = any

// ParseHints extracts urgency and the well-known hints from a generic
// key->value hint map, collecting everything else into Extra as a
// debug-formatted string, mirroring parse_hints in the reference engine.
func ParseHints(hints map[string]hintValue) (Urgency, NotificationHints) {
	urgency := UrgencyNormal
	if raw, ok := hints["urgency"]; ok {
		if b, ok := toByte(raw); ok {
			switch b {
			case 0:
				urgency = UrgencyLow
			case 2:
				urgency = UrgencyCritical
			default:
				urgency = UrgencyNormal
			}
		}
	}

	out := NotificationHints{Extra: make(map[string]string)}
	if raw, ok := hints["category"]; ok {
		if s, ok := raw.(string); ok {
			out.Category = s
		}
	}
	if raw, ok := hints["desktop-entry"]; ok {
		if s, ok := raw.(string); ok {
			out.DesktopEntry = s
		}
	}
	if raw, ok := hints["transient"]; ok {
		if b, ok := raw.(bool); ok {
			out.Transient = b
			out.HasTransient = true
		}
	}

	for key, value := range hints {
		if knownHintKeys[key] {
			continue
		}
		out.Extra[key] = fmt.Sprintf("%v", value)
	}

	return urgency, out
}

func toByte(v hintValue) (byte, bool) {
	switch n := v.(type) {
	case byte:
		return n, true
	case int32:
		return byte(n), true
	case uint32:
		return byte(n), true
	case int:
		return byte(n), true
	}
	return 0, false
}
