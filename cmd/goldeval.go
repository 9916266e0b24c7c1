package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ese-lab/ragcoder/internal/agreement"
	"github.com/ese-lab/ragcoder/internal/fetcher"
	"github.com/ese-lab/ragcoder/internal/report"
)

var (
	goldevalFile    string
	goldevalAverage string
)

var goldevalCmd = &cobra.Command{
	Use:   "goldeval",
	Short: "Evaluate model labels against an adjudicated gold standard",
	Long:  "Derives the gold label from each adjudicated row, scores the model coder against it, and writes the metrics, confusion matrix, and per-label classification report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if goldevalAverage != "" {
			cfg.Eval.Average = goldevalAverage
		}
		if err := cfg.Validate("goldeval"); err != nil {
			return err
		}

		rows, err := fetcher.LoadAdjudication(goldevalFile, cfg.Delimiter())
		if err != nil {
			return eris.Wrap(err, "load adjudicated file")
		}

		gold := agreement.DeriveGold(rows)
		pred := make([]string, 0, len(rows))
		for _, row := range rows {
			pred = append(pred, strings.TrimSpace(row.CoderB))
		}

		eval, err := agreement.Evaluate(gold, pred, cfg.Eval.Average)
		if err != nil {
			return eris.Wrap(err, "evaluate")
		}
		kappa, err := agreement.Kappa(gold, pred)
		if err != nil {
			return eris.Wrap(err, "compute kappa")
		}

		outDir := cfg.Eval.OutDir
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", outDir)
		}
		metricsPath := filepath.Join(outDir, "metrics.json")
		confusionPath := filepath.Join(outDir, "confusion_matrix.csv")
		reportPath := filepath.Join(outDir, "classification_report.csv")
		if err := report.WriteEvalOutputs(metricsPath, confusionPath, reportPath, kappa, eval); err != nil {
			return err
		}

		zap.L().Info("gold evaluation complete",
			zap.Int("rows", len(rows)),
			zap.String("average", eval.Average),
			zap.Float64("accuracy", eval.Accuracy),
			zap.Float64("cohens_kappa", kappa),
			zap.Float64("f1", eval.F1),
			zap.String("outdir", outDir),
		)
		fmt.Fprintf(os.Stdout, "Accuracy: %.4f\nCohen's Kappa: %.4f\nPrecision (%s): %.4f\nRecall (%s): %.4f\nF1 (%s): %.4f\n",
			eval.Accuracy, kappa, eval.Average, eval.Precision, eval.Average, eval.Recall, eval.Average, eval.F1)
		return nil
	},
}

func init() {
	goldevalCmd.Flags().StringVar(&goldevalFile, "file", "", "adjudicated input file (required)")
	goldevalCmd.Flags().StringVar(&goldevalAverage, "average", "", "averaging mode: macro, micro, or weighted")
	_ = goldevalCmd.MarkFlagRequired("file")
}
