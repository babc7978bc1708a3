package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

const sample = `
notification_permission: true
applications:
  - label: Mail
    icon: mail.png
    user_scope: "0"
    component: {package: org.mail, class: Inbox}
  - label: Chat
    user_scope: "0"
    component: {package: org.chat, class: Main}
shortcuts:
  - {id: compose, package: org.mail, label: Compose, handle: mail-compose}
  - {id: new, package: org.chat, label: New chat, handle: chat-new}
contacts:
  - {display_name: Ada, contact_id: 1, lookup_key: ada, phone_number: "+100"}
notifications:
  org.mail: 1
`

func writeFixture(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.True(t, doc.NotificationPermission)
	require.Len(t, doc.Applications, 2)
	assert.Equal(t, types.AppRecord{
		Label:     "Mail",
		Icon:      "mail.png",
		Component: types.ComponentName{Package: "org.mail", Class: "Inbox"},
		UserScope: "0",
	}, doc.Applications[0])
	assert.Equal(t, "+100", doc.Contacts[0].PhoneNumber)
	assert.Equal(t, int64(1), doc.Contacts[0].ContactID)
	assert.Equal(t, map[string]int{"org.mail": 1}, doc.Notifications)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("applications: [unterminated"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, doc))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestShortcutsFilteredByPackage(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	recs := doc.shortcutsOf([]string{"org.chat"})
	require.Len(t, recs, 1)
	assert.Equal(t, "new", recs[0].ID)
	assert.Empty(t, doc.shortcutsOf(nil))
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	src, err := Open(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Empty(t, src.Document().Applications)
	assert.False(t, src.Notifications().HasPermission())
}

func TestOpenInvalidFile(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "contacts: {")
	_, err := Open(path, nil)
	assert.Error(t, err)
}

func TestSourcesEmitCurrentDocument(t *testing.T) {
	src, err := Open(writeFixture(t, t.TempDir(), sample), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan []types.ShortcutRecord, 1)
	done := make(chan error, 1)
	go func() {
		done <- src.Shortcuts().Watch(ctx, []string{"org.mail"}, func(recs []types.ShortcutRecord) {
			select {
			case got <- recs:
			default:
			}
		})
	}()

	select {
	case recs := <-got:
		require.Len(t, recs, 1)
		assert.Equal(t, "compose", recs[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("Expected shortcuts")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, src.Notifications().HasPermission())
}

func TestReloadOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, sample)
	src, err := Open(path, nil)
	require.NoError(t, err)
	src.WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, src.Start(ctx))
	defer src.Close()

	var latest []types.ContactRecord
	updates := make(chan []types.ContactRecord, 8)
	go func() {
		_ = src.Contacts().Watch(ctx, func(recs []types.ContactRecord) { updates <- recs })
	}()

	writeFixture(t, dir, `
contacts:
  - {display_name: Ada, lookup_key: ada}
  - {display_name: Bob, lookup_key: bob}
`)

	require.Eventually(t, func() bool {
		for {
			select {
			case recs := <-updates:
				latest = recs
			default:
				return len(latest) == 2
			}
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "bob", latest[1].LookupKey)
}

func TestReloadKeepsPreviousDocumentOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, sample)
	src, err := Open(path, nil)
	require.NoError(t, err)

	writeFixture(t, dir, "applications: [")
	assert.Error(t, src.Reload())
	assert.Len(t, src.Document().Applications, 2)
}
