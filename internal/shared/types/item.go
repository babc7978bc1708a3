package types

import (
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/utils"
)

// Kind names a LaunchItem variant.
type Kind string

const (
	KindApplication Kind = "application"
	KindContact     Kind = "contact"
	KindShortcut    Kind = "shortcut"
	KindSettings    Kind = "settings"
)

// Icon is an opaque icon handle resolved by the presentation layer.
type Icon string

// PlaceholderIcon stands in for an icon that has not been resolved yet.
const PlaceholderIcon Icon = ""

// ItemInfo is the comparable set of visible fields every variant exposes.
// Two emissions are structurally equal when their ItemInfo slices are.
type ItemInfo struct {
	ID                  string `json:"id"`
	Kind                Kind   `json:"kind"`
	Label               string `json:"label"`
	Icon                Icon   `json:"icon"`
	Deprioritized       bool   `json:"deprioritized"`
	Renamed             bool   `json:"renamed"`
	IgnoreNotifications bool   `json:"ignore_notifications"`
	NotificationRank    int    `json:"notification_rank"`
	HasNotificationRank bool   `json:"has_notification_rank"`
}

// ActionableRank returns the notification rank when it should reorder the item.
func (i ItemInfo) ActionableRank() (int, bool) {
	if !i.HasNotificationRank || i.IgnoreNotifications {
		return 0, false
	}
	return i.NotificationRank, true
}

// LaunchItem is a unit the catalog can present and activate. The variant set
// is closed: Application, Contact, Shortcut and SettingsEntry.
type LaunchItem interface {
	Info() ItemInfo
	// Matches reports whether the item passes a case and accent insensitive
	// containment filter. An empty query matches everything.
	Matches(query string) bool
	// LaunchRequest is the primary start target of the item.
	LaunchRequest() StartRequest

	launchItem()
}

// Deprioritizable is implemented by variants that carry a deprioritized flag.
type Deprioritizable interface {
	LaunchItem
	WithDeprioritized(deprioritized bool) LaunchItem
}

// Application is an installed application entry.
type Application struct {
	ItemInfo
	Component ComponentName `json:"component"`
	UserScope string        `json:"user_scope"`
}

// NewApplication builds an application item from its source record.
func NewApplication(rec AppRecord) Application {
	return Application{
		ItemInfo: ItemInfo{
			ID:    id.ApplicationID(rec.UserScope, rec.Component.Package, rec.Component.Class),
			Kind:  KindApplication,
			Label: rec.Label,
			Icon:  rec.Icon,
		},
		Component: rec.Component,
		UserScope: rec.UserScope,
	}
}

func (a Application) Info() ItemInfo { return a.ItemInfo }
func (Application) launchItem()      {}

// Matches also checks the owning package so "org.calc" finds the calculator.
func (a Application) Matches(query string) bool {
	return utils.ContainsFolded(a.Label, query) || utils.ContainsFolded(a.Component.Package, query)
}

func (a Application) LaunchRequest() StartRequest {
	return StartRequest{Action: StartLaunch, Target: a.Component.String(), UserScope: a.UserScope}
}

// DetailsRequest opens the platform details screen of the application.
func (a Application) DetailsRequest() StartRequest {
	return StartRequest{Action: StartDetails, Target: a.Component.Package, UserScope: a.UserScope}
}

func (a Application) WithDeprioritized(deprioritized bool) LaunchItem {
	a.Deprioritized = deprioritized
	return a
}

// Contact is a starred contact entry.
type Contact struct {
	ItemInfo
	ContactID   int64  `json:"contact_id"`
	LookupKey   string `json:"lookup_key"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// NewContact builds a contact item from its source record.
func NewContact(rec ContactRecord) Contact {
	return Contact{
		ItemInfo: ItemInfo{
			ID:    id.ContactID(rec.LookupKey),
			Kind:  KindContact,
			Label: rec.DisplayName,
			Icon:  rec.Photo,
		},
		ContactID:   rec.ContactID,
		LookupKey:   rec.LookupKey,
		PhoneNumber: rec.PhoneNumber,
	}
}

func (c Contact) Info() ItemInfo { return c.ItemInfo }
func (Contact) launchItem()      {}

func (c Contact) Matches(query string) bool {
	return utils.ContainsFolded(c.Label, query)
}

func (c Contact) LaunchRequest() StartRequest {
	return StartRequest{Action: StartView, Target: c.LookupKey}
}

// MessageRequest returns the messaging target, if the contact has a number.
func (c Contact) MessageRequest() (StartRequest, bool) {
	if c.PhoneNumber == "" {
		return StartRequest{}, false
	}
	return StartRequest{Action: StartMessage, Target: c.PhoneNumber}, true
}

// Shortcut is a pinned shortcut entry.
type Shortcut struct {
	ItemInfo
	ShortcutID string `json:"shortcut_id"`
	Package    string `json:"package"`
	Handle     string `json:"handle"`
}

// NewShortcut builds a shortcut item from its source record.
func NewShortcut(rec ShortcutRecord) Shortcut {
	return Shortcut{
		ItemInfo: ItemInfo{
			ID:    id.ShortcutID(rec.Package, rec.ID),
			Kind:  KindShortcut,
			Label: rec.Label,
			Icon:  rec.Icon,
		},
		ShortcutID: rec.ID,
		Package:    rec.Package,
		Handle:     rec.Handle,
	}
}

func (s Shortcut) Info() ItemInfo { return s.ItemInfo }
func (Shortcut) launchItem()      {}

func (s Shortcut) Matches(query string) bool {
	return utils.ContainsFolded(s.Label, query)
}

func (s Shortcut) LaunchRequest() StartRequest {
	return StartRequest{Action: StartShortcut, Target: s.Handle}
}

// UnpinRequest asks the host to delete the shortcut.
func (s Shortcut) UnpinRequest() StartRequest {
	return StartRequest{Action: StartUnpinShortcut, Target: s.Handle}
}

// SettingsLabel is the label of the settings entry.
const SettingsLabel = "Launcher settings"

// SettingsEntry is the singleton entry that opens the launcher settings.
type SettingsEntry struct {
	ItemInfo
}

// NewSettingsEntry builds the settings entry.
func NewSettingsEntry(icon Icon) SettingsEntry {
	return SettingsEntry{
		ItemInfo: ItemInfo{
			ID:    id.SettingsID,
			Kind:  KindSettings,
			Label: SettingsLabel,
			Icon:  icon,
		},
	}
}

func (s SettingsEntry) Info() ItemInfo { return s.ItemInfo }
func (SettingsEntry) launchItem()      {}

func (s SettingsEntry) Matches(query string) bool {
	return utils.ContainsFolded(s.Label, query)
}

func (s SettingsEntry) LaunchRequest() StartRequest {
	return StartRequest{Action: StartSettings, Target: id.SettingsID}
}

func (s SettingsEntry) WithDeprioritized(deprioritized bool) LaunchItem {
	s.Deprioritized = deprioritized
	return s
}

// Infos projects items onto their comparable views.
func Infos(items []LaunchItem) []ItemInfo {
	out := make([]ItemInfo, len(items))
	for i, item := range items {
		out[i] = item.Info()
	}
	return out
}

// SameInfos reports whether two item lists are structurally equal on their
// visible fields.
func SameInfos(a, b []LaunchItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Info() != b[i].Info() {
			return false
		}
	}
	return true
}
