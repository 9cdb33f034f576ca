package memory

import "strings"

// DefaultCategoryKeywords is the category keyword set that triggers a topic
// change. Matching is whole-word against lowercase whitespace-split tokens:
// "dresses" does not match "dress". Inflected forms can be covered by adding
// them to the set via Config.Keywords.
var DefaultCategoryKeywords = []string{
	"dress", "shirt", "jeans", "shoes", "mobile", "earbuds",
	"tshirt", "kurti", "lehenga", "frock", "sandals",
}

// ShortTermWindow keeps the last N raw user utterances in insertion order and
// tracks the current shopping topic. The topic behaves as a two-state machine:
// unset until the first keyword match, then replaced wholesale on every
// subsequent match. It never returns to unset.
//
// ShortTermWindow is not safe for concurrent use; Session serializes access.
type ShortTermWindow struct {
	size     int
	texts    []string
	topic    string
	keywords map[string]struct{}
}

// NewShortTermWindow creates a window holding up to size utterances.
// A nil or empty keyword set falls back to DefaultCategoryKeywords.
func NewShortTermWindow(size int, keywords []string) *ShortTermWindow {
	if size <= 0 {
		size = 5
	}
	if len(keywords) == 0 {
		keywords = DefaultCategoryKeywords
	}
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[strings.ToLower(kw)] = struct{}{}
	}
	return &ShortTermWindow{
		size:     size,
		texts:    make([]string, 0, size),
		keywords: set,
	}
}

// Add appends a non-empty utterance, evicting the oldest once the window is
// full. Whitespace-only input is a silent no-op.
func (w *ShortTermWindow) Add(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.texts = append(w.texts, text)
	if len(w.texts) > w.size {
		w.texts = w.texts[1:]
	}
}

// UpdateTopic replaces the topic with text verbatim when text contains a
// category keyword; otherwise the topic is retained unchanged.
func (w *ShortTermWindow) UpdateTopic(text string) {
	if w.isTopicChange(text) {
		w.topic = text
	}
}

// QueryContext combines the durable topic with a new message.
//
// With no topic set, newText passes through unchanged. If newText itself
// names a category it becomes the new topic and is returned alone. Otherwise
// the old topic acts as a category filter and newText as a refinement
// (price, size, color), yielding "{topic} {newText}".
func (w *ShortTermWindow) QueryContext(newText string) string {
	if w.topic == "" {
		return newText
	}
	if w.isTopicChange(newText) {
		w.topic = newText
		return newText
	}
	return strings.TrimSpace(w.topic + " " + newText)
}

// Topic returns the current topic, empty until the first keyword match.
func (w *ShortTermWindow) Topic() string {
	return w.topic
}

// Texts returns a copy of the window contents, oldest first.
func (w *ShortTermWindow) Texts() []string {
	out := make([]string, len(w.texts))
	copy(out, w.texts)
	return out
}

// Len reports the number of utterances currently held.
func (w *ShortTermWindow) Len() int {
	return len(w.texts)
}

// isTopicChange is the binary topic-change detector: any whitespace-split
// token of text equal (case-insensitive) to a category keyword.
func (w *ShortTermWindow) isTopicChange(text string) bool {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := w.keywords[word]; ok {
			return true
		}
	}
	return false
}
