package action

import "fmt"

// Kind identifies one variant in the closed action set. Every recognized
// intent string maps to exactly one Kind; anything else maps to KindUnknown.
type Kind string

const (
	KindButtonClick         Kind = "button_click"
	KindButtonDoubleClick   Kind = "button_double_click"
	KindEditEnterText       Kind = "edit_enter_text"
	KindEditSelectText      Kind = "edit_select_text"
	KindEditCopyText        Kind = "edit_copy_text"
	KindEditCutText         Kind = "edit_cut_text"
	KindEditClearField      Kind = "edit_clear_field"
	KindEditDeleteText      Kind = "edit_delete_text"
	KindEditPasteText       Kind = "edit_paste_text"
	KindStaticGetText       Kind = "static_get_text"
	KindSetText             Kind = "set_text"
	KindSetFocus            Kind = "set_focus"
	KindCheckboxSetState    Kind = "checkbox_set_state"
	KindRadioSelect         Kind = "radio_select"
	KindTreeViewSelect      Kind = "treeview_select"
	KindTreeViewExpand      Kind = "treeview_expand"
	KindListViewSelectItem  Kind = "listview_select_item"
	KindTabControlSelectTab Kind = "tabcontrol_select_tab"
	KindListSelect          Kind = "list_select"
	KindWindowResize        Kind = "window_resize"
	KindWindowMinimize      Kind = "window_minimize"
	KindWindowMaximize      Kind = "window_maximize"
	KindWindowClose         Kind = "window_close"
	KindWindowMove          Kind = "window_move"
	KindWindowMinimizeAll   Kind = "window_minimize_all"
	KindWindowMaximizeAll   Kind = "window_maximize_all"
	KindWindowCloseAll      Kind = "window_close_all"
	KindLaunchApplication   Kind = "launch_application"
	KindFocusApplication    Kind = "focus_application"
	KindGroupWindows        Kind = "group_windows"
	KindOpenFileProperties  Kind = "open_file_properties"
	KindKeyPress            Kind = "key_press"
	KindScroll              Kind = "scroll"
	KindScreenshot          Kind = "screenshot"
	KindSpinnerAdjust       Kind = "spinner_adjust"
	KindSelectFiles         Kind = "select_files"
	KindFileOperation       Kind = "file_operation"
	KindPasteFiles          Kind = "paste_files"
	KindCreateDirectory     Kind = "create_directory"
	KindDeleteDirectory     Kind = "delete_directory"
	KindCreateFile          Kind = "create_file"
	KindDeleteFile          Kind = "delete_file"
	KindMultiStep           Kind = "multi_step"
	KindUnknown             Kind = "unknown"
)

// Geometry applied when a resize or move command omits coordinates.
const (
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 600
)

// Action is one fully-resolved operation ready for execution. Kind selects
// the variant; only the fields that variant documents are meaningful. Numeric
// fields are parsed at resolution time, never carried as raw strings.
type Action struct {
	Kind Kind `json:"kind"`

	// Target identification.
	Label string `json:"label,omitempty"`
	App   string `json:"app,omitempty"`

	// Text payloads.
	Text string `json:"text,omitempty"`
	Hint string `json:"hint,omitempty"`

	// Selection targets.
	Item    string `json:"item,omitempty"`
	Tab     string `json:"tab,omitempty"`
	Node    string `json:"node,omitempty"`
	Variant string `json:"variant,omitempty"`

	// File and window grouping targets.
	File        string `json:"file,omitempty"`
	Name        string `json:"name,omitempty"`
	Group       string `json:"group,omitempty"`
	Windows     string `json:"windows,omitempty"`
	Criteria    string `json:"criteria,omitempty"`
	Operation   string `json:"operation,omitempty"`
	Destination string `json:"destination,omitempty"`

	// Input simulation.
	Key       string `json:"key,omitempty"`
	Direction string `json:"direction,omitempty"`
	Amount    *int   `json:"amount,omitempty"`

	// Geometry. Start/End are optional select ranges.
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
	X      int  `json:"x,omitempty"`
	Y      int  `json:"y,omitempty"`
	Start  *int `json:"start,omitempty"`
	End    *int `json:"end,omitempty"`

	// Checkbox / spinner payloads.
	State bool `json:"state,omitempty"`
	Value int  `json:"value,omitempty"`

	// Steps is set only for KindMultiStep, in declaration order.
	Steps []Action `json:"steps,omitempty"`
}

// MultiStep wraps an ordered list of actions into a composite action.
func MultiStep(steps []Action) Action {
	return Action{Kind: KindMultiStep, Steps: steps}
}

// Unknown is the universal terminal case for unrecognized intents.
func Unknown(hint string) Action {
	return Action{Kind: KindUnknown, Hint: hint}
}

// Summary returns a short human-readable description used for task naming
// and log lines.
func (a Action) Summary() string {
	switch a.Kind {
	case KindMultiStep:
		return fmt.Sprintf("multi_step (%d steps)", len(a.Steps))
	case KindUnknown:
		return "unknown"
	case KindLaunchApplication, KindFocusApplication:
		return fmt.Sprintf("%s %s", a.Kind, a.App)
	case KindWindowResize:
		return fmt.Sprintf("%s %dx%d", a.Kind, a.Width, a.Height)
	case KindCreateFile, KindDeleteFile, KindCreateDirectory, KindDeleteDirectory:
		return fmt.Sprintf("%s %s", a.Kind, a.Name)
	default:
		if a.Label != "" {
			return fmt.Sprintf("%s %s", a.Kind, a.Label)
		}
		return string(a.Kind)
	}
}
