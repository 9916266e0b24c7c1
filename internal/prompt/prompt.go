// Package prompt renders the coding instruction prompt from a codebook,
// an exemplar set, and one new response.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ese-lab/ragcoder/internal/model"
)

const template = `You are a meticulous qualitative coding assistant for an academic study. Your job is to assign one or more labels from a given codebook to a user survey response.

Follow these constraints strictly:
1.  **Output Format**: You MUST output a valid JSON list ` + "`[...]`" + `.
2.  **Allowed Labels**: You may ONLY choose labels from the "ALLOWED LABELS (CODEBOOK)" section. Do not invent new labels.
3.  **Evidence**: Use "span_evidence" to quote the shortest possible, direct span of text.
4.  **Multiple Codes**: If a response contains multiple distinct ideas, create a separate JSON object for each.
5.  **Ambiguity**: If the best label is not obvious, choose the closest match, set "ambiguous": true, and write a short note in "rationale".
6.  **No Code (NC)**: If no label applies reasonably, return an empty list ` + "`[]`" + `.
7.  **Empty Answer (NA)**: If the response is empty or whitespace, return the string "NA".

--- ALLOWED LABELS (CODEBOOK) ---
%s

--- EXAMPLES OF CORRECT CODING ---
%s

--- NEW RESPONSE TO CODE ---
Response: "%s"

--- YOUR JSON OUTPUT ---
IMPORTANT: Your entire response must be ONLY the JSON list.
`

// FormatCodebook renders codebook entries as a bulleted label/description list.
func FormatCodebook(entries []model.CodebookEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- Label: `%s`\n  Description: %s", e.Label(), e.Description))
	}
	return strings.Join(lines, "\n")
}

// FormatExemplars renders exemplars as response/label/separator triples.
// Exemplars from multiple sources arrive pre-concatenated in source order
// and are rendered as-is: a label appearing in two sources appears twice.
func FormatExemplars(exemplars []model.Exemplar) string {
	lines := make([]string, 0, 3*len(exemplars))
	for _, ex := range exemplars {
		lines = append(lines, fmt.Sprintf("Response: %q", ex.ResponseText))
		lines = append(lines, fmt.Sprintf("Correct Label: `%s`", ex.Label))
		lines = append(lines, strings.Repeat("-", 10))
	}
	return strings.Join(lines, "\n")
}

// Build renders the full prompt for one response. Build owns quote
// escaping: embedded double quotes in responseText are escaped here so
// they cannot break the template's quoting, and callers pass raw text.
func Build(codebook []model.CodebookEntry, exemplars []model.Exemplar, responseText string) string {
	escaped := strings.ReplaceAll(responseText, `"`, `\"`)
	return fmt.Sprintf(template, FormatCodebook(codebook), FormatExemplars(exemplars), escaped)
}
