package services

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFencePattern = regexp.MustCompile("(?i)```json[\\r\\n]+([\\s\\S]*?)```")
	anyFencePattern  = regexp.MustCompile("```[\\r\\n]+([\\s\\S]*?)```")
)

// SalvageJSON turns a model reply into compact JSON. A strict parse is tried
// first; failing that, the body of a ```json fence (or of any fence) is used,
// and the slice from its first '{' to its last '}' is parsed once more.
func SalvageJSON(text string) (json.RawMessage, error) {
	if raw, err := compactJSON(text); err == nil {
		return raw, nil
	}

	candidate := text
	if m := jsonFencePattern.FindStringSubmatch(candidate); m != nil && m[1] != "" {
		candidate = m[1]
	} else if m := anyFencePattern.FindStringSubmatch(candidate); m != nil && m[1] != "" {
		candidate = m[1]
	}

	first := strings.Index(candidate, "{")
	last := strings.LastIndex(candidate, "}")
	if first == -1 || last == -1 || last <= first {
		return nil, NewUpstreamFormatError(MsgInvalidModelJSON, nil)
	}

	raw, err := compactJSON(candidate[first : last+1])
	if err != nil {
		return nil, NewUnknownError(err)
	}

	return raw, nil
}

// compactJSON validates s and strips insignificant whitespace, keeping key
// order and values as written.
func compactJSON(s string) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
