// Package intent resolves a recognized intent name through the alias table
// into a concrete action. Resolution is total: every input produces an
// action, with unresolvable or malformed intents collapsing to the unknown
// variant rather than an error.
package intent

import (
	"strconv"
	"strings"

	"github.com/akozyrev/deskmate/internal/action"
	"github.com/akozyrev/deskmate/internal/config"
)

// maxAliasDepth bounds the recursive paths through the table (multi-step
// expansion and spoken-object lookup). Anything deeper is treated as
// misconfiguration and resolves to unknown instead of recursing further.
const maxAliasDepth = 16

// Resolve maps an intent name and its parameters to an action, consulting the
// alias table first. Alias matching is case-insensitive and first-match-wins;
// rule parameters fill in only the keys the caller did not supply.
func Resolve(name string, params map[string]string, table []config.AliasRule, fallbackHint string) action.Action {
	return resolve(name, params, table, fallbackHint, 0)
}

func resolve(name string, params map[string]string, table []config.AliasRule, fallbackHint string, depth int) action.Action {
	if depth >= maxAliasDepth {
		return action.Unknown(fallbackHint)
	}

	for _, rule := range table {
		if !strings.EqualFold(strings.TrimSpace(rule.Alias), strings.TrimSpace(name)) {
			continue
		}
		if rule.IsMulti() {
			steps := make([]action.Action, 0, len(rule.Steps))
			for _, step := range rule.Steps {
				// Each step starts from the caller's parameters again so one
				// step's defaults never leak into the next.
				merged := mergeDefaults(params, step.Parameters)
				steps = append(steps, resolve(step.Intent, merged, table, fallbackHint, depth+1))
			}
			return action.MultiStep(steps)
		}
		// A single rule's target is always a direct intent name, never another
		// alias; a target that is not in the direct mapping resolves to unknown.
		merged := mergeDefaults(params, rule.Parameters)
		return Direct(rule.Intent, merged, fallbackHint)
	}

	// "open X" style commands also reach the alias table through X itself, so
	// a spoken alias name launches its configured command instead of being
	// treated as an application.
	if isObjectIntent(name) {
		if obj := firstNonEmpty(params, "object", "app"); obj != "" && tableHas(table, obj) {
			// The object parameter is consumed by the alias lookup; dropping
			// it keeps the expansion from looping back here.
			trimmed := make(map[string]string, len(params))
			for k, v := range params {
				if (k == "object" || k == "app") && v == obj {
					continue
				}
				trimmed[k] = v
			}
			return resolve(obj, trimmed, table, fallbackHint, depth+1)
		}
	}

	return Direct(name, params, fallbackHint)
}

func isObjectIntent(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "launch_object", "focus_object", "launch_application", "focus_application":
		return true
	default:
		return false
	}
}

func tableHas(table []config.AliasRule, name string) bool {
	for _, rule := range table {
		if strings.EqualFold(strings.TrimSpace(rule.Alias), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func firstNonEmpty(params map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := params[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// mergeDefaults copies params and fills in defaults for absent keys only.
// Caller-supplied values always win over rule defaults.
func mergeDefaults(params, defaults map[string]string) map[string]string {
	merged := make(map[string]string, len(params)+len(defaults))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range defaults {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

// Direct maps an intent name straight to its action variant, bypassing the
// alias table. Unrecognized names become the unknown action carrying either
// the supplied hint parameter or the language fallback message.
func Direct(name string, params map[string]string, fallbackHint string) action.Action {
	p := paramReader{params}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "button_click":
		return action.Action{Kind: action.KindButtonClick, Label: p.str("label", "default")}
	case "button_double_click":
		return action.Action{Kind: action.KindButtonDoubleClick, Label: p.str("label", "default")}
	case "edit_enter_text":
		return action.Action{Kind: action.KindEditEnterText, Label: p.str("label", "default"), Text: p.str("text", "")}
	case "edit_select_text":
		return action.Action{
			Kind:  action.KindEditSelectText,
			Label: p.str("label", "default"),
			Start: p.intPtr("start"),
			End:   p.intPtr("end"),
		}
	case "edit_copy_text":
		return action.Action{Kind: action.KindEditCopyText, Label: p.str("label", "default")}
	case "edit_cut_text":
		return action.Action{Kind: action.KindEditCutText, Label: p.str("label", "default")}
	case "edit_clear_field":
		return action.Action{Kind: action.KindEditClearField, Label: p.str("label", "default")}
	case "edit_delete_text":
		return action.Action{Kind: action.KindEditDeleteText, Label: p.str("label", "default")}
	case "edit_paste_text":
		return action.Action{Kind: action.KindEditPasteText, Label: p.str("label", "default"), Text: p.str("text", "")}
	case "static_get_text":
		return action.Action{Kind: action.KindStaticGetText, Label: p.str("label", "default")}
	case "set_text":
		return action.Action{Kind: action.KindSetText, Label: p.str("label", "default"), Text: p.str("text", "")}
	case "set_focus":
		return action.Action{Kind: action.KindSetFocus, Label: p.str("label", "default")}
	case "checkbox_set_state":
		return action.Action{Kind: action.KindCheckboxSetState, Label: p.str("label", "default"), State: p.boolean("state", false)}
	case "radio_select":
		return action.Action{Kind: action.KindRadioSelect, Label: p.str("label", "default"), Variant: p.str("variant", "")}
	case "treeview_select":
		return action.Action{Kind: action.KindTreeViewSelect, Label: p.str("label", "default"), Node: p.str("node", "")}
	case "treeview_expand":
		return action.Action{Kind: action.KindTreeViewExpand, Label: p.str("label", "default"), Node: p.str("node", "")}
	case "listview_select_item":
		return action.Action{Kind: action.KindListViewSelectItem, Label: p.str("label", "default"), Item: p.str("item", "")}
	case "tabcontrol_select_tab":
		return action.Action{Kind: action.KindTabControlSelectTab, Label: p.str("label", "default"), Tab: p.str("tab", "")}
	case "list_select":
		return action.Action{Kind: action.KindListSelect, Label: p.str("label", "default"), Item: p.str("item", "")}
	case "window_resize":
		return action.Action{
			Kind:   action.KindWindowResize,
			Label:  p.str("label", "default"),
			Width:  p.integer("width", action.DefaultWindowWidth),
			Height: p.integer("height", action.DefaultWindowHeight),
		}
	case "window_minimize":
		return action.Action{Kind: action.KindWindowMinimize, Label: p.str("label", "default")}
	case "window_maximize":
		return action.Action{Kind: action.KindWindowMaximize, Label: p.str("label", "default")}
	case "window_close":
		return action.Action{Kind: action.KindWindowClose, Label: p.str("label", "default")}
	case "window_move":
		return action.Action{
			Kind:  action.KindWindowMove,
			Label: p.str("label", "default"),
			X:     p.integer("x", 0),
			Y:     p.integer("y", 0),
		}
	case "window_minimize_all":
		return action.Action{Kind: action.KindWindowMinimizeAll}
	case "window_maximize_all":
		return action.Action{Kind: action.KindWindowMaximizeAll}
	case "window_close_all":
		return action.Action{Kind: action.KindWindowCloseAll}
	case "launch_application", "launch_object":
		return action.Action{Kind: action.KindLaunchApplication, App: p.first("object", "app")}
	case "focus_application", "focus_object":
		return action.Action{Kind: action.KindFocusApplication, App: p.first("object", "app")}
	case "group_windows":
		return action.Action{
			Kind:    action.KindGroupWindows,
			Group:   p.str("group", "default_group"),
			Windows: p.str("windows", ""),
		}
	case "open_file_properties":
		return action.Action{Kind: action.KindOpenFileProperties, File: p.str("file", "")}
	case "key_press":
		return action.Action{Kind: action.KindKeyPress, Key: p.str("key", "")}
	case "scroll":
		return action.Action{
			Kind:      action.KindScroll,
			Label:     p.str("label", "default"),
			Direction: p.str("direction", "up"),
			Amount:    p.intPtr("amount"),
		}
	case "screenshot":
		return action.Action{Kind: action.KindScreenshot, File: p.str("file", "")}
	case "spinner_adjust":
		return action.Action{Kind: action.KindSpinnerAdjust, Label: p.str("label", "default"), Value: p.integer("value", 0)}
	case "select_files":
		return action.Action{Kind: action.KindSelectFiles, Criteria: p.str("criteria", "")}
	case "file_operation", "open_file", "copy_file", "cut_file", "move_file", "rename_file", "delete_file":
		op := p.str("operation", "")
		if op == "" {
			op = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "_file")
			if op == "file_operation" {
				op = "open"
			}
		}
		return action.Action{
			Kind:        action.KindFileOperation,
			Operation:   op,
			File:        p.str("file", ""),
			Destination: p.str("destination", ""),
		}
	case "paste_files":
		return action.Action{Kind: action.KindPasteFiles, Destination: p.str("destination", "")}
	case "create_directory":
		return action.Action{Kind: action.KindCreateDirectory, Name: p.first("name", "file")}
	case "delete_directory":
		return action.Action{Kind: action.KindDeleteDirectory, Name: p.first("name", "file")}
	case "create_file":
		return action.Action{Kind: action.KindCreateFile, Name: p.first("name", "file")}
	case "delete_file_by_name":
		return action.Action{Kind: action.KindDeleteFile, Name: p.first("name", "file")}
	default:
		hint := p.str("hint", "")
		if hint == "" {
			hint = fallbackHint
		}
		return action.Unknown(hint)
	}
}

type paramReader struct {
	params map[string]string
}

func (p paramReader) str(key, fallback string) string {
	if v, ok := p.params[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// first returns the first non-empty value among keys, or "".
func (p paramReader) first(keys ...string) string {
	for _, k := range keys {
		if v, ok := p.params[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (p paramReader) integer(key string, fallback int) int {
	if v, ok := p.params[key]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func (p paramReader) intPtr(key string) *int {
	if v, ok := p.params[key]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

func (p paramReader) boolean(key string, fallback bool) bool {
	if v, ok := p.params[key]; ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
