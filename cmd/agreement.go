package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ese-lab/ragcoder/internal/agreement"
	"github.com/ese-lab/ragcoder/internal/fetcher"
	"github.com/ese-lab/ragcoder/internal/report"
)

var (
	agreementFile         string
	agreementColA         string
	agreementColB         string
	agreementColConsensus string
	agreementOut          string
)

var agreementCmd = &cobra.Command{
	Use:   "agreement",
	Short: "Score pairwise coder agreement",
	Long:  "Computes Cohen's kappa and percent consensus for two label columns of a dual-coded file and writes the agreement table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("agreement"); err != nil {
			return err
		}

		a, b, consensus, err := fetcher.LoadLabeledPairs(
			agreementFile, cfg.Delimiter(), agreementColA, agreementColB, agreementColConsensus)
		if err != nil {
			return eris.Wrap(err, "load label pairs")
		}

		kappa, err := agreement.Kappa(a, b)
		if err != nil {
			return eris.Wrap(err, "compute kappa")
		}
		pct, err := agreement.PercentConsensus(consensus)
		if err != nil {
			return eris.Wrap(err, "compute consensus")
		}

		if err := report.WriteAgreementTable(agreementOut, kappa, pct); err != nil {
			return err
		}

		zap.L().Info("agreement scored",
			zap.Int("pairs", len(a)),
			zap.Float64("kappa", kappa),
			zap.Float64("percent_consensus", pct),
			zap.String("out", agreementOut),
		)
		fmt.Fprintf(os.Stdout, "Cohen's Kappa: %.3f (%s)\nPercent Consensus: %.2f%%\n",
			kappa, agreement.Interpret(kappa), pct)
		return nil
	},
}

func init() {
	agreementCmd.Flags().StringVar(&agreementFile, "file", "", "dual-coded input file (required)")
	agreementCmd.Flags().StringVar(&agreementColA, "col-a", "coderA", "first label column")
	agreementCmd.Flags().StringVar(&agreementColB, "col-b", "coderB", "second label column")
	agreementCmd.Flags().StringVar(&agreementColConsensus, "col-consensus", "consensus", "0/1 consensus column")
	agreementCmd.Flags().StringVar(&agreementOut, "out", "agreement.csv", "output table path")
	_ = agreementCmd.MarkFlagRequired("file")
}
