package wisp

// Default freedesktop notification bus name, object path, and interface.
const (
	DefaultDBusName = "org.freedesktop.Notifications"
	DefaultDBusPath = "/org/freedesktop/Notifications"
	DBusInterface   = "org.freedesktop.Notifications"
)

// SourceConfig configures a Engine and the bus adapter it is paired with.
// Field names and defaults mirror the freedesktop wire contract plus the
// server-identity values returned by GetServerInformation.
type SourceConfig struct {
	Capabilities     []string
	ChannelCapacity  int
	DBusName         string
	DBusPath         string
	ServerName       string
	ServerVendor     string
	ServerVersion    string
	SpecVersion      string
	DefaultTimeoutMs int32
}

// DefaultSourceConfig returns the engine defaults: body-only capability,
// a 256-entry event queue, the standard freedesktop name/path, and a
// 5 second default timeout for notifications that omit one.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Capabilities:     []string{"body"},
		ChannelCapacity:  256,
		DBusName:         DefaultDBusName,
		DBusPath:         DefaultDBusPath,
		ServerName:       "wispd",
		ServerVendor:     "wispd",
		ServerVersion:    "0.1.0",
		SpecVersion:      "1.2",
		DefaultTimeoutMs: 5000,
	}
}
