// Package agreement scores coder agreement and classification quality:
// Cohen's kappa, consensus rates, gold-standard derivation, and
// precision/recall/F1 against a gold standard.
package agreement

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ese-lab/ragcoder/internal/model"
)

// Kappa computes Cohen's kappa for two nominal label sequences.
// Labels are whitespace-trimmed before comparison. Perfect agreement
// returns exactly 1.
func Kappa(a, b []string) (float64, error) {
	if len(a) != len(b) {
		return 0, eris.Errorf("agreement: length mismatch: %d vs %d labels", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, eris.New("agreement: no labels to score")
	}

	n := float64(len(a))
	countA := map[string]float64{}
	countB := map[string]float64{}
	observed := 0.0
	for i := range a {
		la := strings.TrimSpace(a[i])
		lb := strings.TrimSpace(b[i])
		countA[la]++
		countB[lb]++
		if la == lb {
			observed++
		}
	}

	po := observed / n
	if po == 1 {
		return 1, nil
	}

	pe := 0.0
	for label, ca := range countA {
		pe += (ca / n) * (countB[label] / n)
	}
	if pe == 1 {
		return 0, eris.New("agreement: degenerate label distribution, kappa undefined")
	}
	return (po - pe) / (1 - pe), nil
}

// Interpret maps a kappa value to the Landis and Koch descriptive band.
func Interpret(kappa float64) string {
	switch {
	case kappa < 0:
		return "Poor agreement"
	case kappa < 0.20:
		return "Slight agreement"
	case kappa < 0.40:
		return "Fair agreement"
	case kappa < 0.60:
		return "Moderate agreement"
	case kappa < 0.80:
		return "Substantial agreement"
	default:
		return "Almost perfect agreement"
	}
}

// PercentConsensus returns the mean of 0/1 consensus flags as a percentage.
func PercentConsensus(consensus []float64) (float64, error) {
	if len(consensus) == 0 {
		return 0, eris.New("agreement: no consensus values")
	}
	sum := 0.0
	for _, v := range consensus {
		sum += v
	}
	return sum / float64(len(consensus)) * 100, nil
}

// DeriveGold resolves each adjudicated row to a single gold label.
// "A" and "B" select the corresponding coder; an empty or "nan"
// adjudication means the coders already agreed and coder A's label
// stands; anything else is taken verbatim as the adjudicator's label.
func DeriveGold(rows []model.AdjudicationRow) []string {
	gold := make([]string, 0, len(rows))
	for _, row := range rows {
		adj := strings.TrimSpace(row.Adjudication)
		switch {
		case adj == "A":
			gold = append(gold, strings.TrimSpace(row.CoderA))
		case adj == "B":
			gold = append(gold, strings.TrimSpace(row.CoderB))
		case adj == "" || strings.EqualFold(adj, "nan"):
			gold = append(gold, strings.TrimSpace(row.CoderA))
		default:
			gold = append(gold, adj)
		}
	}
	return gold
}
