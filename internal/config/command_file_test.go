package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleDocument = `language: ru
notification_enable: true
notifications_delay: 3
antiflood: true
aliases:
  - alias: open_chrome
    intent: launch_application
    parameters:
      app: chrome.exe
  - alias: morning
    type: multi
    steps:
      - intent: launch_application
        parameters:
          app: chrome.exe
      - intent: window_maximize
`

func writeDocument(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deskmate.yaml")
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func TestLoadCommandFile(t *testing.T) {
	path := writeDocument(t, sampleDocument, 0o600)

	doc, err := LoadCommandFile(path)
	if err != nil {
		t.Fatalf("LoadCommandFile: %v", err)
	}
	if doc.Language != "ru" {
		t.Fatalf("language = %q, want ru", doc.Language)
	}
	if !doc.Antiflood {
		t.Fatalf("antiflood = false, want true")
	}
	if len(doc.Aliases) != 2 {
		t.Fatalf("len(aliases) = %d, want 2", len(doc.Aliases))
	}
	if !doc.Aliases[1].IsMulti() || len(doc.Aliases[1].Steps) != 2 {
		t.Fatalf("second rule should be a two-step multi, got %+v", doc.Aliases[1])
	}
}

func TestLoadCommandFileRejectsLoosePermissions(t *testing.T) {
	path := writeDocument(t, sampleDocument, 0o600)
	if err := os.Chmod(path, 0o666); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	_, err := LoadCommandFile(path)
	if !errors.Is(err, ErrInsecureFile) {
		t.Fatalf("err = %v, want ErrInsecureFile", err)
	}
}

func TestLoadCommandFileDefaultsLanguage(t *testing.T) {
	path := writeDocument(t, "aliases: []\n", 0o600)

	doc, err := LoadCommandFile(path)
	if err != nil {
		t.Fatalf("LoadCommandFile: %v", err)
	}
	if doc.Language != "ru" {
		t.Fatalf("language = %q, want default ru", doc.Language)
	}
}

func TestValidateRules(t *testing.T) {
	cases := []struct {
		name    string
		rules   []AliasRule
		wantErr bool
	}{
		{"valid single", []AliasRule{{Alias: "a", Intent: "launch_application"}}, false},
		{"missing alias", []AliasRule{{Intent: "launch_application"}}, true},
		{"missing intent", []AliasRule{{Alias: "a"}}, true},
		{"multi without steps", []AliasRule{{Alias: "a", Type: "multi"}}, true},
		{"bad type", []AliasRule{{Alias: "a", Type: "tripled", Intent: "x"}}, true},
		{"nested step missing intent", []AliasRule{{Alias: "a", Type: "multi", Steps: []AliasRule{{}}}}, true},
	}
	for _, tc := range cases {
		err := ValidateRules(tc.rules)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestStoreReloadKeepsLastGoodOnFailure(t *testing.T) {
	path := writeDocument(t, sampleDocument, 0o600)
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := os.WriteFile(path, []byte("aliases: [ {alias: broken"), 0o600); err != nil {
		t.Fatalf("corrupt document: %v", err)
	}
	if err := store.Reload(); err == nil {
		t.Fatalf("Reload should fail on a broken document")
	}

	if got := len(store.Aliases()); got != 2 {
		t.Fatalf("len(aliases) = %d after failed reload, want the previous 2", got)
	}
}

func TestStoreReloadPicksUpChanges(t *testing.T) {
	path := writeDocument(t, sampleDocument, 0o600)
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	updated := `language: en
aliases:
  - alias: editor
    intent: launch_application
    parameters:
      app: notepad.exe
`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("rewrite document: %v", err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if store.Settings().Language != "en" {
		t.Fatalf("language = %q, want en", store.Settings().Language)
	}
	aliases := store.Aliases()
	if len(aliases) != 1 || aliases[0].Alias != "editor" {
		t.Fatalf("aliases = %+v, want the updated table", aliases)
	}
}

func TestStoreUpdateSettingPersists(t *testing.T) {
	path := writeDocument(t, sampleDocument, 0o600)
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.UpdateSetting("notifications_delay", "9"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if got := store.Settings().NotificationsDelay; got != 9 {
		t.Fatalf("notifications_delay = %d, want 9", got)
	}

	// A fresh store sees the persisted value; the save keeps owner-only
	// permissions so the integrity check passes again.
	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore(reopen): %v", err)
	}
	if got := reopened.Settings().NotificationsDelay; got != 9 {
		t.Fatalf("persisted notifications_delay = %d, want 9", got)
	}
	if got := len(reopened.Aliases()); got != 2 {
		t.Fatalf("aliases lost on save: len = %d, want 2", got)
	}
}

func TestStoreUpdateSettingValidation(t *testing.T) {
	path := writeDocument(t, sampleDocument, 0o600)
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.UpdateSetting("antiflood", "sometimes"); err == nil {
		t.Fatalf("expected a validation error for a non-boolean antiflood")
	}
	if err := store.UpdateSetting("unknown_knob", "1"); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("err = %v, want ErrSettingNotFound", err)
	}
}

func TestStoreSettingRendersValues(t *testing.T) {
	path := writeDocument(t, sampleDocument, 0o600)
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	got, err := store.Setting("notification_enable")
	if err != nil {
		t.Fatalf("Setting: %v", err)
	}
	if got != "true" {
		t.Fatalf("notification_enable = %q, want true", got)
	}
}
