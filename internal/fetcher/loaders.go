package fetcher

import (
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/ese-lab/ragcoder/internal/model"
)

// LoadCodebook reads the allowed-label set. Required columns:
// category, factor, description.
func LoadCodebook(path string, delimiter rune) ([]model.CodebookEntry, error) {
	table, err := ReadTable(path, delimiter)
	if err != nil {
		return nil, err
	}
	if err := table.RequireColumns("category", "factor", "description"); err != nil {
		return nil, err
	}

	entries := make([]model.CodebookEntry, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		entries = append(entries, model.CodebookEntry{
			Category:    table.Field(i, "category"),
			Factor:      table.Field(i, "factor"),
			Description: table.Field(i, "description"),
		})
	}
	return entries, nil
}

// LoadExemplars reads worked examples from one or more files and
// concatenates them in file order. Duplicate labels across files are
// kept: the prompt renders exemplars exactly as loaded.
func LoadExemplars(paths []string, delimiter rune) ([]model.Exemplar, error) {
	var exemplars []model.Exemplar
	for _, path := range paths {
		table, err := ReadTable(path, delimiter)
		if err != nil {
			return nil, err
		}
		if err := table.RequireColumns("response_text", "label"); err != nil {
			return nil, err
		}
		for i := 0; i < table.Len(); i++ {
			exemplars = append(exemplars, model.Exemplar{
				ResponseText: table.Field(i, "response_text"),
				Label:        table.Field(i, "label"),
			})
		}
	}
	return exemplars, nil
}

// LoadResponses reads the responses to code. Required columns:
// response_id, response_text.
func LoadResponses(path string, delimiter rune) ([]model.Response, error) {
	table, err := ReadTable(path, delimiter)
	if err != nil {
		return nil, err
	}
	if err := table.RequireColumns("response_id", "response_text"); err != nil {
		return nil, err
	}

	responses := make([]model.Response, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		responses = append(responses, model.Response{
			ResponseID: table.Field(i, "response_id"),
			Text:       table.Field(i, "response_text"),
		})
	}
	return responses, nil
}

// LoadAdjudication reads a dual-coded, adjudicated dataset. Required
// columns: coderA, coderB, adjudication; id, response_id and consensus
// are optional.
func LoadAdjudication(path string, delimiter rune) ([]model.AdjudicationRow, error) {
	table, err := ReadTable(path, delimiter)
	if err != nil {
		return nil, err
	}
	if err := table.RequireColumns("coderA", "coderB", "adjudication"); err != nil {
		return nil, err
	}

	rows := make([]model.AdjudicationRow, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		rows = append(rows, model.AdjudicationRow{
			ID:           table.Field(i, "id"),
			ResponseID:   table.Field(i, "response_id"),
			CoderA:       table.Field(i, "coderA"),
			CoderB:       table.Field(i, "coderB"),
			Consensus:    table.Field(i, "consensus"),
			Adjudication: table.Field(i, "adjudication"),
		})
	}
	return rows, nil
}

// LoadLabeledPairs reads two label columns and a 0/1 consensus column
// for pairwise agreement scoring.
func LoadLabeledPairs(path string, delimiter rune, colA, colB, colConsensus string) (a, b []string, consensus []float64, err error) {
	table, err := ReadTable(path, delimiter)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := table.RequireColumns(colA, colB, colConsensus); err != nil {
		return nil, nil, nil, err
	}

	for i := 0; i < table.Len(); i++ {
		a = append(a, table.Field(i, colA))
		b = append(b, table.Field(i, colB))

		raw := table.Field(i, colConsensus)
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return nil, nil, nil, eris.Wrapf(perr, "fetcher: row %d: consensus value %q", i+1, raw)
		}
		consensus = append(consensus, v)
	}
	return a, b, consensus, nil
}
