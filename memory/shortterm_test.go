package memory_test

import (
	"reflect"
	"testing"

	"github.com/cartlane/copilot-go-sdk/memory"
)

func TestShortTermWindow_BoundedFIFO(t *testing.T) {
	w := memory.NewShortTermWindow(5, nil)

	texts := []string{"one", "two", "three", "four", "five", "six", "seven"}
	for _, text := range texts {
		w.Add(text)
	}

	if w.Len() != 5 {
		t.Fatalf("window size = %d, want 5", w.Len())
	}
	want := []string{"three", "four", "five", "six", "seven"}
	if got := w.Texts(); !reflect.DeepEqual(got, want) {
		t.Errorf("window = %v, want %v", got, want)
	}
}

func TestShortTermWindow_IgnoresBlankInput(t *testing.T) {
	w := memory.NewShortTermWindow(5, nil)

	w.Add("")
	w.Add("   ")
	w.Add("\t\n")
	if w.Len() != 0 {
		t.Errorf("window size = %d after blank adds, want 0", w.Len())
	}

	w.Add("red dress")
	if w.Len() != 1 {
		t.Errorf("window size = %d, want 1", w.Len())
	}
}

func TestShortTermWindow_TopicUnsetUntilKeyword(t *testing.T) {
	w := memory.NewShortTermWindow(5, nil)

	w.UpdateTopic("hello there")
	if w.Topic() != "" {
		t.Errorf("topic = %q, want unset", w.Topic())
	}

	w.UpdateTopic("show me a red dress")
	if w.Topic() != "show me a red dress" {
		t.Errorf("topic = %q, want full text verbatim", w.Topic())
	}

	// Non-keyword text keeps the old topic.
	w.UpdateTopic("something cheaper")
	if w.Topic() != "show me a red dress" {
		t.Errorf("topic = %q, want retained", w.Topic())
	}
}

func TestShortTermWindow_TopicRefinement(t *testing.T) {
	w := memory.NewShortTermWindow(5, nil)

	w.UpdateTopic("red dress")
	if got := w.QueryContext("under 500"); got != "red dress under 500" {
		t.Errorf("QueryContext = %q, want %q", got, "red dress under 500")
	}
}

func TestShortTermWindow_TopicSwitch(t *testing.T) {
	w := memory.NewShortTermWindow(5, nil)
	w.UpdateTopic("red dress")

	if got := w.QueryContext("blue shoes"); got != "blue shoes" {
		t.Errorf("QueryContext = %q, want %q", got, "blue shoes")
	}
	if w.Topic() != "blue shoes" {
		t.Errorf("topic = %q, want %q after switch", w.Topic(), "blue shoes")
	}
}

func TestShortTermWindow_NoTopicPassesThrough(t *testing.T) {
	w := memory.NewShortTermWindow(5, nil)

	if got := w.QueryContext("under 500"); got != "under 500" {
		t.Errorf("QueryContext = %q, want passthrough", got)
	}
	if w.Topic() != "" {
		t.Errorf("topic = %q, want still unset", w.Topic())
	}
}

func TestShortTermWindow_WholeWordMatchOnly(t *testing.T) {
	w := memory.NewShortTermWindow(5, nil)

	// "dresses" must not match the "dress" keyword.
	w.UpdateTopic("summer dresses")
	if w.Topic() != "" {
		t.Errorf("topic = %q, substring matched a keyword", w.Topic())
	}

	w.UpdateTopic("Summer DRESS sale")
	if w.Topic() != "Summer DRESS sale" {
		t.Errorf("topic = %q, case-insensitive whole word should match", w.Topic())
	}
}

func TestShortTermWindow_CustomKeywords(t *testing.T) {
	w := memory.NewShortTermWindow(5, []string{"laptop"})

	w.UpdateTopic("red dress")
	if w.Topic() != "" {
		t.Errorf("topic = %q, default keyword should not apply", w.Topic())
	}
	w.UpdateTopic("gaming laptop")
	if w.Topic() != "gaming laptop" {
		t.Errorf("topic = %q, want custom keyword match", w.Topic())
	}
}
