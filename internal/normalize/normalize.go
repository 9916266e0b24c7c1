// Package normalize locates and parses the JSON payload in raw model
// output, classifying it into the coded-output variant.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ese-lab/ragcoder/internal/model"
)

var fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON returns the inner content of a ```json fenced block if the
// text contains one, otherwise the whole text trimmed. It performs no
// JSON validation; it only locates the payload boundary.
func ExtractJSON(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// ParseError reports model text that failed strict JSON parsing. It is a
// recoverable, per-item condition: callers degrade the item to an
// error-marker record and continue.
type ParseError struct {
	RawText string
	cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("normalize: decode model output: %v", e.cause)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// ParseCodedOutput strictly parses jsonText and classifies the value:
// a JSON array becomes an item list, the string "NA" becomes a
// no-response marker, and any other valid JSON value is preserved as
// unrecognized. Labels are NOT validated against the codebook here.
func ParseCodedOutput(jsonText string) (model.CodedOutput, error) {
	var value json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &value); err != nil {
		return model.CodedOutput{}, &ParseError{RawText: jsonText, cause: err}
	}

	switch {
	case isArray(value):
		var elements []json.RawMessage
		if err := json.Unmarshal(value, &elements); err != nil {
			return model.CodedOutput{}, &ParseError{RawText: jsonText, cause: err}
		}
		items := make([]model.Item, 0, len(elements))
		for _, el := range elements {
			items = append(items, classifyItem(el))
		}
		return model.ItemsOutput(items), nil

	case isString(value):
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return model.CodedOutput{}, &ParseError{RawText: jsonText, cause: err}
		}
		if s == model.LabelNA {
			return model.NoResponseOutput(), nil
		}
		return model.UnrecognizedOutput(value), nil

	default:
		return model.UnrecognizedOutput(value), nil
	}
}

// classifyItem sorts one list element: an object with an "error" key is
// an error marker, any other object is a coded item, anything else is
// malformed.
func classifyItem(el json.RawMessage) model.Item {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(el, &obj); err != nil || obj == nil {
		return model.Item{Kind: model.ItemMalformed, Raw: el}
	}

	if raw, ok := obj["error"]; ok {
		var reason string
		if err := json.Unmarshal(raw, &reason); err != nil {
			reason = string(raw)
		}
		return model.Item{Kind: model.ItemErrorMarker, Reason: reason, Raw: el}
	}

	var coded model.CodedItem
	// Field-level mismatches are tolerated; a missing label is handled
	// by the flattener's NC default.
	_ = json.Unmarshal(el, &coded)
	return model.Item{Kind: model.ItemCoded, Coded: coded, Raw: el}
}

func isArray(v json.RawMessage) bool {
	t := strings.TrimSpace(string(v))
	return strings.HasPrefix(t, "[")
}

func isString(v json.RawMessage) bool {
	t := strings.TrimSpace(string(v))
	return strings.HasPrefix(t, `"`)
}
