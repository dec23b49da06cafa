package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInsecureFile is returned when the command file is writable by group or
// others. A world-writable alias table would let any local user inject
// commands, so loading refuses it outright.
var ErrInsecureFile = errors.New("command file is writable by group or others")

// AliasRule remaps a recognized intent to another intent, or to an ordered
// sequence of intents when Type is "multi". Table order is significant:
// the first matching rule wins.
type AliasRule struct {
	Alias      string            `yaml:"alias" json:"alias"`
	Intent     string            `yaml:"intent,omitempty" json:"intent,omitempty"`
	Parameters map[string]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	// Type is "single" (default) or "multi".
	Type  string      `yaml:"type,omitempty" json:"type,omitempty"`
	Steps []AliasRule `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// IsMulti reports whether the rule expands into an ordered step sequence.
func (r AliasRule) IsMulti() bool {
	return strings.EqualFold(strings.TrimSpace(r.Type), "multi")
}

// Settings are the user-facing knobs exposed over the API and persisted back
// to the command file on update.
type Settings struct {
	Language           string `yaml:"language" json:"language"`
	NotificationEnable bool   `yaml:"notification_enable" json:"notification_enable"`
	// NotificationsDelay is in seconds, matching the on-disk format.
	NotificationsDelay int  `yaml:"notifications_delay" json:"notifications_delay"`
	Antiflood          bool `yaml:"antiflood" json:"antiflood"`
}

// CommandFile is the on-disk alias/settings document.
type CommandFile struct {
	Settings `yaml:",inline"`
	Aliases  []AliasRule `yaml:"aliases" json:"aliases"`
}

// LoadCommandFile reads, permission-checks, parses and validates the command
// file. Any failure leaves the caller's previous table untouched.
func LoadCommandFile(path string) (*CommandFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat command file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o022 != 0 {
		return nil, fmt.Errorf("%w: %s has mode %o", ErrInsecureFile, path, mode)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read command file: %w", err)
	}

	var doc CommandFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse command file %s: %w", path, err)
	}
	applySettingsDefaults(&doc.Settings)
	if err := ValidateRules(doc.Aliases); err != nil {
		return nil, fmt.Errorf("validate command file %s: %w", path, err)
	}
	return &doc, nil
}

// Save writes the document back with owner-only permissions so a subsequent
// load passes the integrity check.
func (f *CommandFile) Save(path string) error {
	raw, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode command file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write command file: %w", err)
	}
	return nil
}

// ValidateRules rejects malformed alias configuration at load time so that
// resolution never has to deal with half-formed rules.
func ValidateRules(rules []AliasRule) error {
	return validateRules(rules, false)
}

func validateRules(rules []AliasRule, nested bool) error {
	for i, r := range rules {
		if !nested && strings.TrimSpace(r.Alias) == "" {
			return fmt.Errorf("alias rule %d: alias must not be empty", i)
		}
		if r.IsMulti() {
			if len(r.Steps) == 0 {
				return fmt.Errorf("alias rule %d (%s): multi rule needs at least one step", i, r.Alias)
			}
			if err := validateRules(r.Steps, true); err != nil {
				return fmt.Errorf("alias rule %d (%s): %w", i, r.Alias, err)
			}
			continue
		}
		if t := strings.TrimSpace(r.Type); t != "" && !strings.EqualFold(t, "single") {
			return fmt.Errorf("alias rule %d (%s): type must be single or multi, got %q", i, r.Alias, r.Type)
		}
		if strings.TrimSpace(r.Intent) == "" {
			return fmt.Errorf("alias rule %d (%s): intent must not be empty", i, r.Alias)
		}
	}
	return nil
}

func applySettingsDefaults(s *Settings) {
	if strings.TrimSpace(s.Language) == "" {
		s.Language = "ru"
	}
	if s.NotificationsDelay < 0 {
		s.NotificationsDelay = 0
	}
}

func cloneRules(rules []AliasRule) []AliasRule {
	if rules == nil {
		return nil
	}
	out := make([]AliasRule, len(rules))
	for i, r := range rules {
		out[i] = r
		if r.Parameters != nil {
			p := make(map[string]string, len(r.Parameters))
			for k, v := range r.Parameters {
				p[k] = v
			}
			out[i].Parameters = p
		}
		out[i].Steps = cloneRules(r.Steps)
	}
	return out
}
