package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodebookEntryLabel(t *testing.T) {
	e := CodebookEntry{Category: "Process", Factor: "Deadlines", Description: "Schedule pressure"}
	assert.Equal(t, "Process-Deadlines", e.Label())
}

func TestCodedOutputMarshal_Items(t *testing.T) {
	out := ItemsOutput([]Item{
		{Kind: ItemCoded, Coded: CodedItem{Label: "X-Y", SpanEvidence: "too many meetings"}},
		{Kind: ItemErrorMarker, Reason: "boom"},
	})

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"X-Y","span_evidence":"too many meetings"},{"error":"boom"}]`, string(data))
}

func TestCodedOutputMarshal_EmptyItems(t *testing.T) {
	data, err := json.Marshal(ItemsOutput(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestCodedOutputMarshal_NoResponse(t *testing.T) {
	data, err := json.Marshal(NoResponseOutput())
	require.NoError(t, err)
	assert.Equal(t, `"NA"`, string(data))
}

func TestCodedOutputMarshal_CallError(t *testing.T) {
	data, err := json.Marshal(CallErrorOutput("connection reset"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"error":"connection reset"}]`, string(data))
}

func TestCodedOutputMarshal_ParseError(t *testing.T) {
	data, err := json.Marshal(ParseErrorOutput("not json at all"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"error":"JSON Decode Error"}]`, string(data))
}

func TestCodedOutputMarshal_Unrecognized(t *testing.T) {
	data, err := json.Marshal(UnrecognizedOutput(json.RawMessage(`{"note":"odd"}`)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"note":"odd"}`, string(data))
}

func TestItemMarshal_PreservesRaw(t *testing.T) {
	it := Item{Kind: ItemMalformed, Raw: json.RawMessage(`"just a string"`)}
	data, err := json.Marshal(it)
	require.NoError(t, err)
	assert.Equal(t, `"just a string"`, string(data))
}

func TestCodingRecordMarshal(t *testing.T) {
	rec := CodingRecord{
		ResponseID:   "r-17",
		ResponseText: "deadlines are brutal",
		Output: ItemsOutput([]Item{
			{Kind: ItemCoded, Coded: CodedItem{Label: "Process-Deadlines", SpanEvidence: "deadlines are brutal", Ambiguous: true, Rationale: "could be workload"}},
		}),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"response_id": "r-17",
		"response_text": "deadlines are brutal",
		"coded_output": [{"label":"Process-Deadlines","span_evidence":"deadlines are brutal","ambiguous":true,"rationale":"could be workload"}]
	}`, string(data))
}
