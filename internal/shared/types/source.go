package types

// ComponentName identifies a launchable component inside a package.
type ComponentName struct {
	Package string `json:"package" yaml:"package"`
	Class   string `json:"class" yaml:"class"`
}

// String flattens the component as package/class.
func (c ComponentName) String() string {
	return c.Package + "/" + c.Class
}

// AppRecord is one installed application as enumerated by the host.
type AppRecord struct {
	Label     string        `json:"label" yaml:"label"`
	Icon      Icon          `json:"icon" yaml:"icon"`
	Component ComponentName `json:"component" yaml:"component"`
	UserScope string        `json:"user_scope" yaml:"user_scope"`
}

// ShortcutRecord is one pinned shortcut owned by an installed package.
type ShortcutRecord struct {
	ID      string `json:"id" yaml:"id"`
	Package string `json:"package" yaml:"package"`
	Label   string `json:"label" yaml:"label"`
	Icon    Icon   `json:"icon" yaml:"icon"`
	Handle  string `json:"handle" yaml:"handle"`
}

// ContactRecord is one starred contact.
type ContactRecord struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	ContactID   int64  `json:"contact_id" yaml:"contact_id"`
	LookupKey   string `json:"lookup_key" yaml:"lookup_key"`
	Photo       Icon   `json:"photo" yaml:"photo"`
	PhoneNumber string `json:"phone_number,omitempty" yaml:"phone_number"`
}

// StartAction names the kind of start request sent to the host.
type StartAction string

const (
	StartLaunch        StartAction = "launch"
	StartDetails       StartAction = "details"
	StartView          StartAction = "view"
	StartMessage       StartAction = "message"
	StartShortcut      StartAction = "shortcut"
	StartUnpinShortcut StartAction = "unpin_shortcut"
	StartSettings      StartAction = "settings"
)

// StartRequest is a launch target plus the optional user scope to run it in.
type StartRequest struct {
	Action    StartAction `json:"action"`
	Target    string      `json:"target"`
	UserScope string      `json:"user_scope,omitempty"`
}
