package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrSettingNotFound is returned for settings names outside the known set.
var ErrSettingNotFound = errors.New("setting not found")

// Store holds the current command-file snapshot and swaps it atomically on
// reload or settings update. In-flight resolutions keep the snapshot they
// started with.
type Store struct {
	path string

	mu       sync.RWMutex
	current  *CommandFile
	onReload func(err error)
}

// NewStore loads the command file at path. A missing or invalid file is a
// startup error; later reload failures only log and keep the last-good table.
func NewStore(path string) (*Store, error) {
	doc, err := LoadCommandFile(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, current: doc}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// SetReloadHook installs a callback invoked after every reload attempt with
// its outcome. Used for metrics and logging.
func (s *Store) SetReloadHook(hook func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = hook
}

// Aliases returns the current alias table. Callers must not mutate it; the
// table is replaced wholesale on reload so a held slice stays consistent.
func (s *Store) Aliases() []AliasRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Aliases
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Settings
}

// Reload re-reads the backing file and swaps the snapshot on success. On
// failure the previous snapshot is retained and the error returned.
func (s *Store) Reload() error {
	doc, err := LoadCommandFile(s.path)

	s.mu.Lock()
	hook := s.onReload
	if err == nil {
		s.current = doc
	}
	s.mu.Unlock()

	if hook != nil {
		hook(err)
	}
	return err
}

// Setting returns the named setting rendered as a string.
func (s *Store) Setting(name string) (string, error) {
	st := s.Settings()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "language":
		return st.Language, nil
	case "notification_enable":
		return strconv.FormatBool(st.NotificationEnable), nil
	case "notifications_delay":
		return strconv.Itoa(st.NotificationsDelay), nil
	case "antiflood":
		return strconv.FormatBool(st.Antiflood), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, name)
	}
}

// UpdateSetting validates and applies one settings field, persists the whole
// document back to disk, and swaps the in-memory snapshot. The write happens
// under the lock so concurrent updates cannot interleave their file writes.
func (s *Store) UpdateSetting(name, value string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current
	next.Aliases = cloneRules(s.current.Aliases)

	switch name {
	case "language":
		if value == "" {
			return fmt.Errorf("language must not be empty")
		}
		next.Language = value
	case "notification_enable":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("notification_enable must be a boolean: %w", err)
		}
		next.NotificationEnable = b
	case "notifications_delay":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("notifications_delay must be a non-negative integer")
		}
		next.NotificationsDelay = n
	case "antiflood":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("antiflood must be a boolean: %w", err)
		}
		next.Antiflood = b
	default:
		return fmt.Errorf("%w: %s", ErrSettingNotFound, name)
	}

	if err := next.Save(s.path); err != nil {
		return err
	}
	s.current = &next
	return nil
}
