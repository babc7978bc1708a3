// Package fixture implements every catalog source on top of one YAML file.
// The file is re-read when it changes on disk, so a running daemon can be
// driven by editing it.
//
// Example file:
//
//	notification_permission: true
//	applications:
//	  - label: Mail
//	    icon: mail.png
//	    user_scope: "0"
//	    component: {package: org.mail, class: Inbox}
//	shortcuts:
//	  - {id: compose, package: org.mail, label: Compose, handle: mail-compose}
//	contacts:
//	  - {display_name: Ada, contact_id: 1, lookup_key: ada, phone_number: "+100"}
//	notifications:
//	  org.mail: 1
package fixture

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

// Document is the parsed fixture file.
type Document struct {
	NotificationPermission bool                   `yaml:"notification_permission"`
	Applications           []types.AppRecord      `yaml:"applications"`
	Shortcuts              []types.ShortcutRecord `yaml:"shortcuts"`
	Contacts               []types.ContactRecord  `yaml:"contacts"`
	Notifications          map[string]int         `yaml:"notifications"`
}

// Parse decodes a fixture document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse fixture: %w", err)
	}
	return doc, nil
}

// Load reads and decodes the fixture at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Save encodes doc to path.
func Save(path string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

func (d Document) shortcutsOf(packageIDs []string) []types.ShortcutRecord {
	wanted := types.NewIDSet(packageIDs...)
	out := make([]types.ShortcutRecord, 0, len(d.Shortcuts))
	for _, rec := range d.Shortcuts {
		if wanted.Has(rec.Package) {
			out = append(out, rec)
		}
	}
	return out
}
