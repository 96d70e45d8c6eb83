package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ScreenshotType identifies which game screen a reply describes.
type ScreenshotType string

const (
	TypeLeagueTable ScreenshotType = "league_table"
	TypeTeamStats   ScreenshotType = "team_stats"
	TypePlayerStats ScreenshotType = "player_stats"
	TypeUnknown     ScreenshotType = "unknown"
)

// DefaultConfidence replaces a missing or out-of-range confidence value.
const DefaultConfidence = 0.5

// Valid reports whether t is one of the four known screenshot types.
func (t ScreenshotType) Valid() bool {
	switch t {
	case TypeLeagueTable, TypeTeamStats, TypePlayerStats, TypeUnknown:
		return true
	}
	return false
}

// Extraction is the interpreted form of one vision reply.
type Extraction struct {
	Type       ScreenshotType  `json:"type"`
	Confidence float64         `json:"confidence"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors,omitempty"`
}

// HasData reports whether the extraction carries a non-null payload.
func (e Extraction) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Unknown returns the fallback extraction used whenever a reply cannot be
// interpreted.
func Unknown(errs ...string) Extraction {
	return Extraction{
		Type:       TypeUnknown,
		Confidence: 0,
		Data:       nil,
		Errors:     errs,
	}
}

// Failed wraps a transport or API error into the unknown fallback.
func Failed(err error) Extraction {
	return Unknown(fmt.Sprintf("vision request failed: %v", err))
}

type rawReply struct {
	Type       json.RawMessage `json:"type"`
	Confidence json.RawMessage `json:"confidence"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors"`
}

// Interpret turns free-form reply text into an Extraction. Replies without a
// JSON object, with malformed JSON or with an unexpected type all degrade to
// the unknown fallback with an explanatory error.
func Interpret(reply string) Extraction {
	span, ok := FirstJSONObject(reply)
	if !ok {
		return Unknown("no JSON object found in response")
	}

	var raw rawReply
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return Unknown(fmt.Sprintf("response JSON is malformed: %v", err))
	}

	var typ string
	if err := json.Unmarshal(raw.Type, &typ); err != nil || !ScreenshotType(typ).Valid() {
		return Unknown(fmt.Sprintf("unexpected screenshot type %s", describeRaw(raw.Type)))
	}

	ex := Extraction{
		Type:       ScreenshotType(typ),
		Confidence: parseConfidence(raw.Confidence),
		Errors:     parseErrors(raw.Errors),
	}
	if data := bytes.TrimSpace(raw.Data); len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		ex.Data = data
	}
	return ex
}

// parseConfidence returns DefaultConfidence for a missing, null,
// non-numeric or out-of-range value.
func parseConfidence(raw json.RawMessage) float64 {
	var c *float64
	if len(raw) == 0 || json.Unmarshal(raw, &c) != nil || c == nil {
		return DefaultConfidence
	}
	if math.IsNaN(*c) || math.IsInf(*c, 0) || *c < 0 || *c > 1 {
		return DefaultConfidence
	}
	return *c
}

// parseErrors accepts either a list or a single value. String entries are
// kept as is, any other entry keeps its JSON text.
func parseErrors(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		if entry := errorText(trimmed); entry != "" {
			return []string{entry}
		}
		return nil
	}

	errs := make([]string, 0, len(list))
	for _, item := range list {
		if entry := errorText(item); entry != "" {
			errs = append(errs, entry)
		}
	}
	return errs
}

func errorText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func describeRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "(missing)"
	}
	return strings.TrimSpace(string(raw))
}

// FirstJSONObject returns the first balanced {...} span in text. Braces that
// appear inside JSON string literals do not count towards nesting.
func FirstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
