package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ese-lab/ragcoder/internal/agreement"
	"github.com/ese-lab/ragcoder/internal/model"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coded_results.csv")
	rows := []model.FlattenedRow{
		{ID: 1, ResponseID: "r1", ResponseText: "too many deadlines", Label: "Process-Deadlines"},
		{ID: 2, ResponseID: "r2", ResponseText: "", Label: "NA"},
	}

	require.NoError(t, WriteResults(path, rows))

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "\ufeff"), "file must start with a UTF-8 BOM")
	assert.Contains(t, content, "id;response_id;response_text;label\n")
	assert.Contains(t, content, "1;r1;too many deadlines;Process-Deadlines\n")
	assert.Contains(t, content, "2;r2;;NA\n")
}

func TestWriteAuditLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.json")
	entries := []model.AuditEntry{{ResponseID: "r1", PromptText: "the prompt"}}

	require.NoError(t, WriteAuditLog(path, entries))

	var decoded []model.AuditEntry
	require.NoError(t, json.Unmarshal([]byte(readFile(t, path)), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "r1", decoded[0].ResponseID)
}

func TestWriteAuditLog_NilBecomesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.json")
	require.NoError(t, WriteAuditLog(path, nil))
	assert.Equal(t, "[]\n", readFile(t, path))
}

func TestWriteModelOutputLog_WireShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs.json")
	entries := []model.ModelOutputEntry{
		{ResponseID: "r1", Output: model.NoResponseOutput()},
	}

	require.NoError(t, WriteModelOutputLog(path, entries))

	content := readFile(t, path)
	assert.Contains(t, content, `"coded_output": "NA"`)
}

func TestWriteErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	lines := []string{
		"ID: r1, API Exception: HTTP 429",
		"ID: r2, JSON Decode Error, Raw Output: oops",
	}

	require.NoError(t, WriteErrorLog(path, lines))
	assert.Equal(t, strings.Join(lines, "\n")+"\n", readFile(t, path))
}

func TestWriteAgreementTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agreement.csv")
	require.NoError(t, WriteAgreementTable(path, 0.7123, 85.5))

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "\ufeff"))
	assert.Contains(t, content, "Metric;Value\n")
	assert.Contains(t, content, "Cohen's Kappa;0.712\n")
	assert.Contains(t, content, "Percent Consensus;85.50%\n")
	assert.Contains(t, content, "Interpretation;Substantial agreement\n")
}

func TestWriteEvalOutputs(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "metrics.json")
	confusionPath := filepath.Join(dir, "confusion.csv")
	reportPath := filepath.Join(dir, "classification_report.csv")

	gold := []string{"X", "X", "Y"}
	pred := []string{"X", "Y", "Y"}
	eval, err := agreement.Evaluate(gold, pred, agreement.AverageMacro)
	require.NoError(t, err)
	kappa, err := agreement.Kappa(gold, pred)
	require.NoError(t, err)

	require.NoError(t, WriteEvalOutputs(metricsPath, confusionPath, reportPath, kappa, eval))

	var metrics map[string]float64
	require.NoError(t, json.Unmarshal([]byte(readFile(t, metricsPath)), &metrics))
	assert.Contains(t, metrics, "accuracy")
	assert.Contains(t, metrics, "cohens_kappa")
	assert.Contains(t, metrics, "precision_macro")
	assert.Contains(t, metrics, "f1_macro")
	assert.InDelta(t, kappa, metrics["cohens_kappa"], 1e-9)

	confusion := readFile(t, confusionPath)
	assert.Contains(t, confusion, ";pred::X;pred::Y\n")
	assert.Contains(t, confusion, "gold::X;1;1\n")
	assert.Contains(t, confusion, "gold::Y;0;1\n")

	report := readFile(t, reportPath)
	assert.Contains(t, report, "label;precision;recall;f1;support\n")
	assert.Contains(t, report, "X;1.0000;0.5000;")
}
