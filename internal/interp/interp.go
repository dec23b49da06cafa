// Package interp turns free-text commands into a recognized intent plus a
// parameter map. It never fails: text that matches no pattern yields the
// sentinel intent "unknown" with a hint parameter, and the dispatch layer
// takes it from there.
package interp

import (
	"regexp"
	"strings"
)

// IntentUnknown is the sentinel intent for unrecognized text.
const IntentUnknown = "unknown"

// Result is the outcome of interpreting one command.
type Result struct {
	Intent string
	Params map[string]string
}

// Interpreter matches normalized text against the pattern set of a single
// language. Construct one per language; instances are immutable and safe for
// concurrent use.
type Interpreter struct {
	patterns *patternSet
}

var (
	quotedRe = regexp.MustCompile(`"([^"]+)"`)
	numberRe = regexp.MustCompile(`\b(\d+)\b`)
)

// New returns an interpreter for the given language code ("ru", "en").
// Unsupported codes fall back to Russian, the configuration default.
func New(language string) *Interpreter {
	return &Interpreter{patterns: patternsFor(strings.ToLower(strings.TrimSpace(language)))}
}

// FallbackHint is the hint message attached to unrecognized commands when the
// caller supplied none.
func (in *Interpreter) FallbackHint() string {
	return in.patterns.msgHint
}

// Parse classifies one command. The first matching pattern wins; extraction
// of labels, quoted payloads and numbers runs against the raw lowercased text
// so quoting survives normalization.
func (in *Interpreter) Parse(text string) Result {
	p := in.patterns
	lower := strings.ToLower(text)
	norm := in.normalize(lower)

	res := Result{Intent: IntentUnknown, Params: map[string]string{}}

	if caps := p.selectText.FindStringSubmatch(norm); caps != nil {
		res.Intent = "edit_select_text"
		res.Params["start"] = caps[1]
		res.Params["end"] = caps[2]
		in.putLabel(res.Params, lower)
		return res
	}
	if p.copyText.MatchString(norm) {
		res.Intent = "edit_copy_text"
		in.putLabel(res.Params, lower)
		return res
	}
	if p.cutText.MatchString(norm) {
		res.Intent = "edit_cut_text"
		in.putLabel(res.Params, lower)
		return res
	}
	if p.deleteText.MatchString(norm) {
		res.Intent = "edit_delete_text"
		in.putLabel(res.Params, lower)
		return res
	}
	if p.pasteText.MatchString(norm) {
		res.Intent = "edit_paste_text"
		in.putLabel(res.Params, lower)
		if text, ok := quoted(lower); ok {
			res.Params["text"] = text
		}
		return res
	}
	if p.enterText.MatchString(norm) {
		res.Intent = "edit_enter_text"
		res.Params["label"] = in.labelOr(lower, "default")
		if text, ok := quoted(lower); ok {
			res.Params["text"] = text
		}
		return res
	}
	if p.getText.MatchString(norm) {
		res.Intent = "static_get_text"
		res.Params["label"] = in.labelOr(lower, "default")
		return res
	}
	if p.setText.MatchString(norm) {
		res.Intent = "set_text"
		res.Params["label"] = in.labelOr(lower, "default")
		if text, ok := quoted(lower); ok {
			res.Params["text"] = text
		}
		return res
	}

	if p.windowResize.MatchString(norm) {
		res.Intent = "window_resize"
		if nums := numbers(lower); len(nums) >= 2 {
			res.Params["width"] = nums[0]
			res.Params["height"] = nums[1]
		}
		return res
	}
	if p.windowMinimize.MatchString(norm) {
		res.Intent = "window_minimize"
		res.Params["label"] = in.labelOr(lower, "default")
		return res
	}
	if p.windowMaximize.MatchString(norm) {
		res.Intent = "window_maximize"
		res.Params["label"] = in.labelOr(lower, "default")
		return res
	}
	if p.windowClose.MatchString(norm) {
		res.Intent = "window_close"
		res.Params["label"] = in.labelOr(lower, "default")
		return res
	}
	if p.windowMove.MatchString(norm) {
		res.Intent = "window_move"
		if nums := numbers(lower); len(nums) >= 2 {
			res.Params["x"] = nums[0]
			res.Params["y"] = nums[1]
		}
		in.putLabel(res.Params, lower)
		return res
	}

	if p.fileOpen.MatchString(norm) {
		return fileResult(&res, "open_file", lower)
	}
	if p.fileCopy.MatchString(norm) {
		return fileResult(&res, "copy_file", lower)
	}
	if p.fileMove.MatchString(norm) {
		return fileResult(&res, "move_file", lower)
	}
	if p.fileRename.MatchString(norm) {
		return fileResult(&res, "rename_file", lower)
	}
	if p.fileDelete.MatchString(norm) {
		return fileResult(&res, "delete_file", lower)
	}

	if caps := p.groupWindows.FindStringSubmatch(norm); caps != nil {
		res.Intent = "group_windows"
		group := strings.TrimSpace(caps[len(caps)-1])
		if group == "" {
			group = "default_group"
		}
		res.Params["group"] = group
		res.Params["windows"] = ""
		return res
	}
	if caps := p.universalOpen.FindStringSubmatch(norm); caps != nil {
		res.Intent = "launch_object"
		res.Params["object"] = caps[2]
		return res
	}
	if caps := p.universalFocus.FindStringSubmatch(norm); caps != nil {
		res.Intent = "focus_object"
		res.Params["object"] = caps[2]
		return res
	}

	res.Params["hint"] = p.msgHint
	return res
}

// normalize strips punctuation and stop words so patterns match a stable
// word stream. Quotes and digits survive in the raw text used for extraction.
func (in *Interpreter) normalize(lower string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'а' && r <= 'я', r == 'ё':
			return r
		case r == ' ', r == '\t', r == '\n':
			return ' '
		case r == '.', r == '_', r == '-':
			return r
		default:
			return ' '
		}
	}, lower)

	words := strings.Fields(cleaned)
	out := words[:0]
	for _, w := range words {
		if in.patterns.stopWords[w] {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func (in *Interpreter) putLabel(params map[string]string, lower string) {
	if caps := in.patterns.label.FindStringSubmatch(lower); caps != nil {
		params["label"] = caps[1]
	}
}

func (in *Interpreter) labelOr(lower, fallback string) string {
	if caps := in.patterns.label.FindStringSubmatch(lower); caps != nil {
		return caps[1]
	}
	return fallback
}

func fileResult(res *Result, intent, lower string) Result {
	res.Intent = intent
	if file, ok := quoted(lower); ok {
		res.Params["file"] = file
	}
	return *res
}

func quoted(s string) (string, bool) {
	caps := quotedRe.FindStringSubmatch(s)
	if caps == nil {
		return "", false
	}
	return caps[1], true
}

func numbers(s string) []string {
	caps := numberRe.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		out = append(out, c[1])
	}
	return out
}
