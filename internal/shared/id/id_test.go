package id

import (
	"strings"
	"testing"
)

func TestItemIDs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"application", ApplicationID("0", "org.calc", "Main"), "0/org.calc/Main"},
		{"work profile application", ApplicationID("10", "org.calc", "Main"), "10/org.calc/Main"},
		{"shortcut", ShortcutID("org.mail", "compose"), "shortcut/org.mail/compose"},
		{"contact", ContactID("0r1-ABC"), "contact/0r1-ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, tt.got)
			}
		})
	}
}

func TestItemIDNamespacesDoNotCollide(t *testing.T) {
	ids := map[string]bool{
		ApplicationID("0", "a", "b"): true,
		ShortcutID("a", "b"):         true,
		ContactID("a/b"):             true,
		SettingsID:                   true,
	}
	if len(ids) != 4 {
		t.Errorf("Expected 4 distinct ids, got %d", len(ids))
	}

	if !IsShortcut(ShortcutID("a", "b")) || IsShortcut(ContactID("x")) {
		t.Error("IsShortcut misclassified an id")
	}
	if !IsContact(ContactID("x")) || IsContact(SettingsID) {
		t.Error("IsContact misclassified an id")
	}
}

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	for _, prefix := range []string{SubscriptionPrefix, TaskPrefix} {
		generated := Default().GenerateWithPrefix(prefix)

		if !strings.HasPrefix(generated, prefix+"_") {
			t.Errorf("ID should start with '%s_', got: %s", prefix, generated)
		}

		parts := strings.Split(generated, "_")
		if len(parts) != 2 {
			t.Fatalf("Prefixed ID should have format 'prefix_ulid', got: %s", generated)
		}
		if !IsValid(parts[1]) {
			t.Errorf("ULID part should be valid: %s", parts[1])
		}
	}
}

func TestTypedHandles(t *testing.T) {
	sub := NewSubscriptionID()
	task := NewTaskID()

	if !strings.HasPrefix(sub.String(), "sub_") {
		t.Errorf("Unexpected subscription id: %s", sub)
	}
	if !strings.HasPrefix(task.String(), "task_") {
		t.Errorf("Unexpected task id: %s", task)
	}
}
