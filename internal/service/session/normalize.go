package session

import (
	"encoding/json"
	"strings"
)

type artifactWord struct {
	Text string `json:"text"`
}

type artifactBlock struct {
	Speaker     string `json:"speaker"`
	Participant *struct {
		Name string `json:"name"`
	} `json:"participant"`
	Words []artifactWord `json:"words"`
}

type artifactUtterances struct {
	Utterances []struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	} `json:"utterances"`
}

// Normalize flattens a finalized transcript into "speaker: text" lines joined
// by newlines. It accepts a list of speaker blocks or an {"utterances": [...]}
// object; any other shape yields "".
func Normalize(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return ""
	}

	var lines []string
	switch trimmed[0] {
	case '[':
		var blocks []artifactBlock
		if err := json.Unmarshal([]byte(trimmed), &blocks); err != nil {
			return ""
		}
		for _, b := range blocks {
			speaker := b.Speaker
			if speaker == "" && b.Participant != nil {
				speaker = b.Participant.Name
			}
			words := make([]string, 0, len(b.Words))
			for _, w := range b.Words {
				if t := strings.TrimSpace(w.Text); t != "" {
					words = append(words, t)
				}
			}
			lines = appendLine(lines, speaker, strings.Join(words, " "))
		}
	case '{':
		var doc artifactUtterances
		if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
			return ""
		}
		for _, u := range doc.Utterances {
			lines = appendLine(lines, u.Speaker, u.Text)
		}
	}

	return strings.Join(lines, "\n")
}

// appendLine drops lines without text.
func appendLine(lines []string, speaker, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return lines
	}
	if speaker = strings.TrimSpace(speaker); speaker != "" {
		text = speaker + ": " + text
	}
	return append(lines, text)
}
