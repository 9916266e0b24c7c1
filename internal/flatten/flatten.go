// Package flatten turns per-response coding records into the
// row-per-label result table.
package flatten

import (
	"strings"

	"github.com/ese-lab/ragcoder/internal/model"
)

// Flatten expands every coding record into one or more table rows.
// Every record contributes at least one row, so the table is never
// silently shorter than the input. Row IDs are a dense 1-based
// sequence assigned here.
func Flatten(records []model.CodingRecord) []model.FlattenedRow {
	rows := make([]model.FlattenedRow, 0, len(records))

	for _, rec := range records {
		text := rec.ResponseText
		if strings.EqualFold(text, "nan") {
			text = ""
		}

		for _, label := range labelsFor(rec.Output) {
			rows = append(rows, model.FlattenedRow{
				ID:           len(rows) + 1,
				ResponseID:   rec.ResponseID,
				ResponseText: text,
				Label:        label,
			})
		}
	}
	return rows
}

// labelsFor maps one coded output to its row labels. The switch is a
// total match over OutputKind so new variants fail loudly in review,
// not silently at runtime.
func labelsFor(out model.CodedOutput) []string {
	switch out.Kind {
	case model.OutputNoResponse:
		return []string{model.LabelNA}
	case model.OutputCallError, model.OutputParseError:
		return []string{model.LabelError}
	case model.OutputUnrecognized:
		return []string{model.LabelNC}
	case model.OutputItems:
		if len(out.Items) == 0 {
			return []string{model.LabelNC}
		}
		labels := make([]string, 0, len(out.Items))
		for _, it := range out.Items {
			labels = append(labels, itemLabel(it))
		}
		return labels
	default:
		return []string{model.LabelNC}
	}
}

func itemLabel(it model.Item) string {
	switch it.Kind {
	case model.ItemErrorMarker:
		return model.LabelError
	case model.ItemMalformed:
		return model.LabelMalformed
	default:
		if label := strings.TrimSpace(it.Coded.Label); label != "" {
			return label
		}
		return model.LabelNC
	}
}
