package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fragment is what could be recovered from one webhook payload.
// Empty fields mean the payload did not carry them.
type Fragment struct {
	CallID string
	// Event is the provider event name, e.g. "transcript.partial_data".
	Event string
	// Shape names the strategy that produced Text.
	Shape   string
	Speaker string
	Text    string
}

// Line is the accumulator line for f: "speaker: text", or the bare text.
func (f Fragment) Line() string {
	if f.Speaker == "" {
		return f.Text
	}
	return f.Speaker + ": " + f.Text
}

type object = map[string]any

// strategy extracts text and speaker from one known payload shape.
type strategy struct {
	name string
	// scope returns the object holding the shape's fields, nil when absent.
	scope func(d object) object
	text  func(scope object) string
}

// strategies are tried in order; the first non-empty text wins.
var strategies = []strategy{
	{
		name:  "text",
		scope: func(d object) object { return d },
		text:  func(s object) string { return str(s["text"]) },
	},
	{
		name:  "words",
		scope: func(d object) object { return d },
		text:  func(s object) string { return joinWords(s["words"]) },
	},
	{
		name:  "segment",
		scope: func(d object) object { return obj(d["segment"]) },
		text:  func(s object) string { return joinWords(s["words"]) },
	},
	{
		name:  "realtime",
		scope: func(d object) object { return obj(d["data"]) },
		text:  func(s object) string { return joinWords(s["words"]) },
	},
}

// callIDPaths lists where the call identifier may live, highest priority first.
var callIDPaths = [][]string{
	{"bot_id"},
	{"bot", "id"},
	{"id"},
	{"data", "bot_id"},
	{"data", "bot", "id"},
}

// Extract parses a webhook body. A body that is not a JSON object is read as {}.
func Extract(body []byte) Fragment {
	var root object
	if err := json.Unmarshal(body, &root); err != nil || root == nil {
		root = object{}
	}

	f := Fragment{
		CallID: callID(root),
		Event:  firstString(root["event"], root["type"]),
	}

	d := obj(root["data"])
	if d == nil {
		d = root
	}

	for _, s := range strategies {
		scope := s.scope(d)
		if scope == nil {
			continue
		}
		text := strings.TrimSpace(s.text(scope))
		if text == "" {
			continue
		}
		f.Shape = s.name
		f.Text = text
		f.Speaker = speaker(scope)
		break
	}

	return f
}

func callID(root object) string {
	for _, path := range callIDPaths {
		if id := str(lookup(root, path)); id != "" {
			return id
		}
	}
	return ""
}

func speaker(scope object) string {
	if s := strings.TrimSpace(str(scope["speaker"])); s != "" {
		return s
	}
	if p := obj(scope["participant"]); p != nil {
		return strings.TrimSpace(str(p["name"]))
	}
	return ""
}

// joinWords joins the text of each word token with single spaces, skipping blanks.
func joinWords(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	tokens := make([]string, 0, len(list))
	for _, w := range list {
		word := obj(w)
		if word == nil {
			continue
		}
		if t := strings.TrimSpace(str(word["text"])); t != "" {
			tokens = append(tokens, t)
		}
	}
	return strings.Join(tokens, " ")
}

func lookup(root object, path []string) any {
	var cur any = root
	for _, key := range path {
		m := obj(cur)
		if m == nil {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func obj(v any) object {
	m, _ := v.(map[string]any)
	return m
}

// str returns strings as-is and numbers in decimal form.
func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func firstString(values ...any) string {
	for _, v := range values {
		if s := str(v); s != "" {
			return s
		}
	}
	return ""
}
