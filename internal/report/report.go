// Package report writes the pipeline's output artifacts: the result
// table, the JSON logs, the error log, and the scoring tables.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ese-lab/ragcoder/internal/agreement"
	"github.com/ese-lab/ragcoder/internal/model"
)

// outputDelimiter separates fields of every CSV artifact. Spreadsheet
// tools in semicolon locales open these files without an import dialog.
const outputDelimiter = ';'

// writeCSV creates path and streams rows through fn. The file starts
// with a UTF-8 byte-order mark so label text with non-ASCII characters
// survives a double-click into Excel.
func writeCSV(path string, fn func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	bom := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(bom)
	w.Comma = outputDelimiter

	if err := fn(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	if err := bom.Close(); err != nil {
		return eris.Wrapf(err, "report: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}

// WriteResults writes the flattened label table.
func WriteResults(path string, rows []model.FlattenedRow) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"id", "response_id", "response_text", "label"}); err != nil {
			return eris.Wrap(err, "report: write header")
		}
		for _, row := range rows {
			rec := []string{strconv.Itoa(row.ID), row.ResponseID, row.ResponseText, row.Label}
			if err := w.Write(rec); err != nil {
				return eris.Wrapf(err, "report: write row %d", row.ID)
			}
		}
		return nil
	})
}

// writeJSON marshals v as an indented array to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "report: marshal %s", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

// WriteAuditLog writes the full prompt trail.
func WriteAuditLog(path string, entries []model.AuditEntry) error {
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	return writeJSON(path, entries)
}

// WriteModelOutputLog writes the successfully parsed model outputs.
func WriteModelOutputLog(path string, entries []model.ModelOutputEntry) error {
	if entries == nil {
		entries = []model.ModelOutputEntry{}
	}
	return writeJSON(path, entries)
}

// WriteErrorLog writes one line per failure. Call only when the run
// actually produced errors; an absent file means a clean run.
func WriteErrorLog(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	for _, line := range lines {
		if _, err := io.WriteString(f, line+"\n"); err != nil {
			return eris.Wrapf(err, "report: write %s", path)
		}
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}

// WriteAgreementTable writes the pairwise agreement summary.
func WriteAgreementTable(path string, kappa, consensusPct float64) error {
	return writeCSV(path, func(w *csv.Writer) error {
		records := [][]string{
			{"Metric", "Value"},
			{"Cohen's Kappa", fmt.Sprintf("%.3f", kappa)},
			{"Percent Consensus", fmt.Sprintf("%.2f%%", consensusPct)},
			{"Interpretation", agreement.Interpret(kappa)},
		}
		for _, rec := range records {
			if err := w.Write(rec); err != nil {
				return eris.Wrap(err, "report: write agreement table")
			}
		}
		return nil
	})
}

// WriteEvalOutputs writes the three gold-evaluation artifacts: a
// metrics JSON keyed by averaging mode, the confusion matrix CSV with
// axis-prefixed labels, and the per-label classification report CSV.
func WriteEvalOutputs(metricsPath, confusionPath, reportPath string, kappa float64, eval *agreement.Evaluation) error {
	metrics := map[string]float64{
		"accuracy":                  eval.Accuracy,
		"cohens_kappa":              kappa,
		"precision_" + eval.Average: eval.Precision,
		"recall_" + eval.Average:    eval.Recall,
		"f1_" + eval.Average:        eval.F1,
	}
	if err := writeJSON(metricsPath, metrics); err != nil {
		return err
	}

	if err := writeCSV(confusionPath, func(w *csv.Writer) error {
		header := make([]string, 0, len(eval.Labels)+1)
		header = append(header, "")
		for _, l := range eval.Labels {
			header = append(header, "pred::"+l)
		}
		if err := w.Write(header); err != nil {
			return eris.Wrap(err, "report: write confusion header")
		}
		for i, l := range eval.Labels {
			rec := make([]string, 0, len(eval.Labels)+1)
			rec = append(rec, "gold::"+l)
			for _, n := range eval.Confusion[i] {
				rec = append(rec, strconv.Itoa(n))
			}
			if err := w.Write(rec); err != nil {
				return eris.Wrap(err, "report: write confusion row")
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return writeCSV(reportPath, func(w *csv.Writer) error {
		if err := w.Write([]string{"label", "precision", "recall", "f1", "support"}); err != nil {
			return eris.Wrap(err, "report: write report header")
		}
		for _, m := range eval.Report {
			rec := []string{
				m.Label,
				fmt.Sprintf("%.4f", m.Precision),
				fmt.Sprintf("%.4f", m.Recall),
				fmt.Sprintf("%.4f", m.F1),
				strconv.Itoa(m.Support),
			}
			if err := w.Write(rec); err != nil {
				return eris.Wrapf(err, "report: write report row %s", m.Label)
			}
		}
		return nil
	})
}

// LogRunSummary logs where the run's artifacts landed and whether any
// items degraded to error markers.
func LogRunSummary(resultsFile, errorFile string, rowCount, errorCount int) {
	log := zap.L().With(
		zap.String("results_file", resultsFile),
		zap.Int("rows", rowCount),
	)
	if errorCount > 0 {
		log.Warn("run finished with errors",
			zap.Int("errors", errorCount),
			zap.String("error_log", errorFile),
		)
		return
	}
	log.Info("run finished cleanly")
}
