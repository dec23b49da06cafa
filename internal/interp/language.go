package interp

import "regexp"

// patternSet holds the compiled command patterns and user-facing messages for
// one language. Pattern order in Parse is significant: the first match wins.
type patternSet struct {
	universalOpen  *regexp.Regexp
	universalFocus *regexp.Regexp
	groupWindows   *regexp.Regexp

	selectText *regexp.Regexp
	copyText   *regexp.Regexp
	cutText    *regexp.Regexp
	deleteText *regexp.Regexp
	pasteText  *regexp.Regexp
	enterText  *regexp.Regexp
	getText    *regexp.Regexp
	setText    *regexp.Regexp

	windowResize   *regexp.Regexp
	windowMinimize *regexp.Regexp
	windowMaximize *regexp.Regexp
	windowClose    *regexp.Regexp
	windowMove     *regexp.Regexp

	fileOpen   *regexp.Regexp
	fileCopy   *regexp.Regexp
	fileMove   *regexp.Regexp
	fileRename *regexp.Regexp
	fileDelete *regexp.Regexp

	label *regexp.Regexp

	stopWords map[string]bool

	// msgHint is the fallback hint attached to unrecognized commands.
	msgHint string
}

var russianPatterns = &patternSet{
	universalOpen:  regexp.MustCompile(`(открой|запусти|запуск)\s+([а-яa-z0-9_.\-]+)`),
	universalFocus: regexp.MustCompile(`(перейди|переключись|фокус)\s+(?:на\s+)?([а-яa-z0-9_.\-]+)`),
	groupWindows:   regexp.MustCompile(`(сгруппируй|группируй)\s+окна\s*([а-яa-z0-9_]*)`),

	selectText: regexp.MustCompile(`выдели\s+текст\s+(?:с\s+)?(\d+)\s+(?:по\s+)?(\d+)`),
	copyText:   regexp.MustCompile(`скопируй\s+текст`),
	cutText:    regexp.MustCompile(`вырежи\s+текст`),
	deleteText: regexp.MustCompile(`удали\s+текст`),
	pasteText:  regexp.MustCompile(`вставь\s+текст`),
	enterText:  regexp.MustCompile(`введи\s+текст`),
	getText:    regexp.MustCompile(`(прочитай|покажи)\s+текст`),
	setText:    regexp.MustCompile(`установи\s+текст`),

	windowResize:   regexp.MustCompile(`измени\s+размер\s+окна`),
	windowMinimize: regexp.MustCompile(`сверни\s+окно`),
	windowMaximize: regexp.MustCompile(`разверни\s+окно`),
	windowClose:    regexp.MustCompile(`закрой\s+окно`),
	windowMove:     regexp.MustCompile(`(передвинь|перемести)\s+окно`),

	fileOpen:   regexp.MustCompile(`открой\s+файл`),
	fileCopy:   regexp.MustCompile(`скопируй\s+файл`),
	fileMove:   regexp.MustCompile(`перемести\s+файл`),
	fileRename: regexp.MustCompile(`переименуй\s+файл`),
	fileDelete: regexp.MustCompile(`удали\s+файл`),

	label: regexp.MustCompile(`(?:название|лейбл)\s+([а-яa-z0-9_]+)`),

	stopWords: wordSet("и", "в", "на", "с", "к", "по", "за", "для", "также", "не", "но", "а", "то", "же"),

	msgHint: "Команда не распознана. Попробуйте уточнить запрос.",
}

var englishPatterns = &patternSet{
	universalOpen:  regexp.MustCompile(`(open|launch|start|run)\s+([a-z0-9_.\-]+)`),
	universalFocus: regexp.MustCompile(`(focus|switch)\s+(?:to\s+)?([a-z0-9_.\-]+)`),
	groupWindows:   regexp.MustCompile(`group\s+windows\s*([a-z0-9_]*)`),

	selectText: regexp.MustCompile(`select\s+text\s+(?:from\s+)?(\d+)\s+(?:to\s+)?(\d+)`),
	copyText:   regexp.MustCompile(`copy\s+text`),
	cutText:    regexp.MustCompile(`cut\s+text`),
	deleteText: regexp.MustCompile(`delete\s+text`),
	pasteText:  regexp.MustCompile(`paste\s+text`),
	enterText:  regexp.MustCompile(`(enter|type)\s+text`),
	getText:    regexp.MustCompile(`(read|get|show)\s+text`),
	setText:    regexp.MustCompile(`set\s+text`),

	windowResize:   regexp.MustCompile(`resize\s+(?:the\s+)?window`),
	windowMinimize: regexp.MustCompile(`minimi[sz]e\s+(?:the\s+)?window`),
	windowMaximize: regexp.MustCompile(`maximi[sz]e\s+(?:the\s+)?window`),
	windowClose:    regexp.MustCompile(`close\s+(?:the\s+)?window`),
	windowMove:     regexp.MustCompile(`move\s+(?:the\s+)?window`),

	fileOpen:   regexp.MustCompile(`open\s+(?:the\s+)?file`),
	fileCopy:   regexp.MustCompile(`copy\s+(?:the\s+)?file`),
	fileMove:   regexp.MustCompile(`move\s+(?:the\s+)?file`),
	fileRename: regexp.MustCompile(`rename\s+(?:the\s+)?file`),
	fileDelete: regexp.MustCompile(`delete\s+(?:the\s+)?file`),

	label: regexp.MustCompile(`(?:label|named?)\s+([a-z0-9_]+)`),

	stopWords: wordSet("a", "an", "the", "please", "and", "to", "of", "in", "on", "for"),

	msgHint: "Command not recognized. Try rephrasing the request.",
}

// patternsFor returns the pattern set for a language code, defaulting to
// Russian, which matches the shipped configuration default.
func patternsFor(language string) *patternSet {
	switch language {
	case "en":
		return englishPatterns
	default:
		return russianPatterns
	}
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
