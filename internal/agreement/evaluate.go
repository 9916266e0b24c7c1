package agreement

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Averaging modes for aggregate precision/recall/F1.
const (
	AverageMacro    = "macro"
	AverageMicro    = "micro"
	AverageWeighted = "weighted"
)

// LabelMetrics is the per-label row of a classification report.
// Support is the number of gold instances of the label.
type LabelMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation is the result of scoring predictions against a gold
// standard. Labels orders both axes of the confusion matrix:
// Confusion[i][j] counts items with gold Labels[i] predicted as
// Labels[j].
type Evaluation struct {
	Average   string         `json:"average"`
	Accuracy  float64        `json:"accuracy"`
	Precision float64        `json:"precision"`
	Recall    float64        `json:"recall"`
	F1        float64        `json:"f1"`
	Labels    []string       `json:"labels"`
	Confusion [][]int        `json:"confusion"`
	Report    []LabelMetrics `json:"report"`
}

// Evaluate scores predicted labels against gold labels. The label set
// is the sorted union of both sequences, so the confusion matrix axes
// are identical even when a label only ever appears on one side.
// Undefined ratios (zero denominators) score 0.
func Evaluate(gold, pred []string, average string) (*Evaluation, error) {
	if len(gold) != len(pred) {
		return nil, eris.Errorf("agreement: length mismatch: %d gold vs %d predicted", len(gold), len(pred))
	}
	if len(gold) == 0 {
		return nil, eris.New("agreement: no labels to evaluate")
	}
	switch average {
	case AverageMacro, AverageMicro, AverageWeighted:
	default:
		return nil, eris.Errorf("agreement: unknown averaging mode %q", average)
	}

	labels := labelUnion(gold, pred)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	confusion := make([][]int, len(labels))
	for i := range confusion {
		confusion[i] = make([]int, len(labels))
	}
	correct := 0
	for i := range gold {
		g := strings.TrimSpace(gold[i])
		p := strings.TrimSpace(pred[i])
		confusion[index[g]][index[p]]++
		if g == p {
			correct++
		}
	}

	eval := &Evaluation{
		Average:   average,
		Accuracy:  float64(correct) / float64(len(gold)),
		Labels:    labels,
		Confusion: confusion,
		Report:    make([]LabelMetrics, 0, len(labels)),
	}

	for i, label := range labels {
		tp := confusion[i][i]
		predicted, actual := 0, 0
		for j := range labels {
			predicted += confusion[j][i]
			actual += confusion[i][j]
		}
		m := LabelMetrics{
			Label:     label,
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, actual),
			Support:   actual,
		}
		m.F1 = f1(m.Precision, m.Recall)
		eval.Report = append(eval.Report, m)
	}

	eval.Precision, eval.Recall, eval.F1 = aggregate(eval.Report, average, correct, len(gold))
	return eval, nil
}

func labelUnion(gold, pred []string) []string {
	seen := map[string]bool{}
	for _, l := range gold {
		seen[strings.TrimSpace(l)] = true
	}
	for _, l := range pred {
		seen[strings.TrimSpace(l)] = true
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func aggregate(report []LabelMetrics, average string, correct, total int) (p, r, f float64) {
	switch average {
	case AverageMicro:
		// Single-label multiclass: micro P, R and F1 all equal accuracy.
		acc := ratio(correct, total)
		return acc, acc, acc
	case AverageWeighted:
		for _, m := range report {
			w := float64(m.Support) / float64(total)
			p += w * m.Precision
			r += w * m.Recall
			f += w * m.F1
		}
		return p, r, f
	default: // macro
		n := float64(len(report))
		for _, m := range report {
			p += m.Precision
			r += m.Recall
			f += m.F1
		}
		return p / n, r / n, f / n
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
