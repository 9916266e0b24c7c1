// Package model defines the domain types shared across the coding pipeline.
package model

import (
	"encoding/json"
)

// Sentinel labels emitted by the flattener for degenerate outcomes.
const (
	LabelNA        = "NA"        // empty or whitespace-only input
	LabelNC        = "NC"        // no applicable code
	LabelError     = "ERROR"     // model call or parse failure
	LabelMalformed = "MALFORMED" // coded item that is not a JSON object
)

// CodebookEntry is one allowed classification label with its description.
type CodebookEntry struct {
	Category    string `json:"category"`
	Factor      string `json:"factor"`
	Description string `json:"description"`
}

// Label returns the identity label "{category}-{factor}".
func (e CodebookEntry) Label() string {
	return e.Category + "-" + e.Factor
}

// Exemplar is a worked response/label pair shown to the model.
type Exemplar struct {
	ResponseText string `json:"response_text"`
	Label        string `json:"label"`
}

// Response is one input survey response. ResponseID is caller-assigned
// and opaque: not guaranteed numeric or unique across files.
type Response struct {
	ResponseID string `json:"response_id"`
	Text       string `json:"response_text"`
}

// CodedItem is one label assignment the model emits for part of a response.
type CodedItem struct {
	Label        string `json:"label"`
	SpanEvidence string `json:"span_evidence"`
	Ambiguous    bool   `json:"ambiguous,omitempty"`
	Rationale    string `json:"rationale,omitempty"`
}

// ItemKind discriminates elements of a coded-output list.
type ItemKind string

const (
	ItemCoded       ItemKind = "coded"
	ItemErrorMarker ItemKind = "error_marker" // JSON object carrying an "error" key
	ItemMalformed   ItemKind = "malformed"    // JSON element that is not an object
)

// Item is one element of a model-emitted list. The model is asked for
// objects shaped like CodedItem, but real output drifts; the variant
// keeps every element representable so the flattener is a total match.
type Item struct {
	Kind   ItemKind
	Coded  CodedItem
	Reason string          // set for ItemErrorMarker
	Raw    json.RawMessage // original element, kept for the logs
}

// MarshalJSON reproduces the element as the model emitted it.
func (it Item) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case ItemErrorMarker:
		return json.Marshal(map[string]string{"error": it.Reason})
	case ItemMalformed:
		if len(it.Raw) > 0 {
			return it.Raw, nil
		}
		return json.Marshal(nil)
	default:
		if len(it.Raw) > 0 {
			return it.Raw, nil
		}
		return json.Marshal(it.Coded)
	}
}

// OutputKind discriminates the shape of a response's coded output.
type OutputKind string

const (
	OutputItems        OutputKind = "items"        // list of zero or more items
	OutputNoResponse   OutputKind = "no_response"  // the literal string "NA"
	OutputCallError    OutputKind = "call_error"   // transport/provider failure
	OutputParseError   OutputKind = "parse_error"  // model text was not valid JSON
	OutputUnrecognized OutputKind = "unrecognized" // valid JSON, neither list nor "NA"
)

// CodedOutput is the tagged result of coding one response.
type CodedOutput struct {
	Kind    OutputKind
	Items   []Item
	Reason  string          // call-error reason
	RawText string          // raw model text for parse errors
	Raw     json.RawMessage // original JSON value for unrecognized shapes
}

// ItemsOutput wraps a parsed item list (possibly empty).
func ItemsOutput(items []Item) CodedOutput {
	return CodedOutput{Kind: OutputItems, Items: items}
}

// NoResponseOutput marks an empty-input or model-declared "NA" response.
func NoResponseOutput() CodedOutput {
	return CodedOutput{Kind: OutputNoResponse}
}

// CallErrorOutput marks a failed model invocation.
func CallErrorOutput(reason string) CodedOutput {
	return CodedOutput{Kind: OutputCallError, Reason: reason}
}

// ParseErrorOutput marks model text that did not parse as JSON.
func ParseErrorOutput(rawText string) CodedOutput {
	return CodedOutput{Kind: OutputParseError, RawText: rawText}
}

// UnrecognizedOutput marks a valid JSON value that is neither a list nor "NA".
func UnrecognizedOutput(raw json.RawMessage) CodedOutput {
	return CodedOutput{Kind: OutputUnrecognized, Raw: raw}
}

// jsonDecodeErrorReason is the marker reason written for parse failures.
const jsonDecodeErrorReason = "JSON Decode Error"

// MarshalJSON serializes the variant back to the wire shape the audit
// tooling expects: an item list, the string "NA", a single-element
// error-marker list, or the original unrecognized value.
func (o CodedOutput) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OutputNoResponse:
		return json.Marshal(LabelNA)
	case OutputCallError:
		return json.Marshal([]map[string]string{{"error": o.Reason}})
	case OutputParseError:
		return json.Marshal([]map[string]string{{"error": jsonDecodeErrorReason}})
	case OutputUnrecognized:
		if len(o.Raw) > 0 {
			return o.Raw, nil
		}
		return json.Marshal(nil)
	default:
		if o.Items == nil {
			return json.Marshal([]Item{})
		}
		return json.Marshal(o.Items)
	}
}

// CodingRecord is the per-response unit the orchestrator emits.
type CodingRecord struct {
	ResponseID   string      `json:"response_id"`
	ResponseText string      `json:"response_text"`
	Output       CodedOutput `json:"coded_output"`
}

// FlattenedRow is one row of the label-per-row result table. ID is a
// dense 1-based sequence assigned at flatten time, independent of
// ResponseID.
type FlattenedRow struct {
	ID           int    `json:"id"`
	ResponseID   string `json:"response_id"`
	ResponseText string `json:"response_text"`
	Label        string `json:"label"`
}

// AuditEntry records the exact prompt sent for a response.
type AuditEntry struct {
	ResponseID string `json:"response_id"`
	PromptText string `json:"prompt_text"`
}

// ModelOutputEntry records a successfully parsed model output.
type ModelOutputEntry struct {
	ResponseID string      `json:"response_id"`
	Output     CodedOutput `json:"coded_output"`
}

// AdjudicationRow is one row of a dual-coded, adjudicated dataset.
// Consensus and Adjudication are kept as raw strings; interpretation
// happens in the agreement package.
type AdjudicationRow struct {
	ID           string `json:"id"`
	ResponseID   string `json:"response_id"`
	CoderA       string `json:"coderA"`
	CoderB       string `json:"coderB"`
	Consensus    string `json:"consensus"`
	Adjudication string `json:"adjudication"`
}
