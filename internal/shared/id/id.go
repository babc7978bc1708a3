// Package id provides identifier construction for the launch catalog.
//
// Catalog item ids are deterministic and derived from the source record so
// that usage counters and overrides survive icon and label churn:
//   - Applications: userScope/package/class
//   - Shortcuts: shortcut/package/shortcutID
//   - Contacts: contact/lookupKey
//   - Settings entry: the fixed id "aSettings"
//
// Runtime handles (source subscriptions, scheduled usage records) use
// prefixed ULIDs so they sort by creation time in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Catalog Item IDs
// ============================================================================

// SettingsID is the id of the singleton settings entry.
const SettingsID = "aSettings"

const (
	ShortcutNamespace = "shortcut"
	ContactNamespace  = "contact"
)

// ApplicationID returns the id of an application launched in a user scope.
func ApplicationID(userScope, pkg, class string) string {
	return userScope + "/" + pkg + "/" + class
}

// ShortcutID namespaces a provider shortcut id by its owning package.
func ShortcutID(pkg, shortcutID string) string {
	return ShortcutNamespace + "/" + pkg + "/" + shortcutID
}

// ContactID namespaces a provider lookup key.
func ContactID(lookupKey string) string {
	return ContactNamespace + "/" + lookupKey
}

// IsShortcut reports whether an item id belongs to a shortcut.
func IsShortcut(itemID string) bool {
	return strings.HasPrefix(itemID, ShortcutNamespace+"/")
}

// IsContact reports whether an item id belongs to a contact.
func IsContact(itemID string) bool {
	return strings.HasPrefix(itemID, ContactNamespace+"/")
}

// ============================================================================
// Runtime Handles
// ============================================================================

// SubscriptionID identifies one source subscription
type SubscriptionID string

// TaskID identifies one scheduled usage record
type TaskID string

const (
	SubscriptionPrefix = "sub"
	TaskPrefix         = "task"
	TracePrefix        = "trace"
	SpanPrefix         = "span"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSubscriptionID generates a new subscription ID
func NewSubscriptionID() SubscriptionID {
	return SubscriptionID(Default().GenerateWithPrefix(SubscriptionPrefix))
}

// NewTaskID generates a new task ID
func NewTaskID() TaskID {
	return TaskID(Default().GenerateWithPrefix(TaskPrefix))
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// NewSpanID generates a new span ID
func NewSpanID() string {
	return Default().GenerateWithPrefix(SpanPrefix)
}

func (id SubscriptionID) String() string { return string(id) }
func (id TaskID) String() string         { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}
