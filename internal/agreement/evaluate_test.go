package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_PerfectPredictions(t *testing.T) {
	gold := []string{"X", "Y", "X"}
	eval, err := Evaluate(gold, gold, AverageMacro)
	require.NoError(t, err)

	assert.Equal(t, 1.0, eval.Accuracy)
	assert.Equal(t, 1.0, eval.Precision)
	assert.Equal(t, 1.0, eval.Recall)
	assert.Equal(t, 1.0, eval.F1)
}

func TestEvaluate_UnionAxes(t *testing.T) {
	// "Z" appears only in predictions; both axes must still carry it.
	gold := []string{"X", "Y"}
	pred := []string{"X", "Z"}

	eval, err := Evaluate(gold, pred, AverageMacro)
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y", "Z"}, eval.Labels)
	require.Len(t, eval.Confusion, 3)
	for _, row := range eval.Confusion {
		assert.Len(t, row, 3)
	}
	// gold Y predicted Z.
	assert.Equal(t, 1, eval.Confusion[1][2])
}

func TestEvaluate_MacroAveraging(t *testing.T) {
	gold := []string{"X", "X", "Y", "Y"}
	pred := []string{"X", "Y", "Y", "Y"}

	eval, err := Evaluate(gold, pred, AverageMacro)
	require.NoError(t, err)

	// X: P=1, R=0.5; Y: P=2/3, R=1.
	assert.InDelta(t, 0.75, eval.Accuracy, 1e-9)
	assert.InDelta(t, (1.0+2.0/3.0)/2, eval.Precision, 1e-9)
	assert.InDelta(t, 0.75, eval.Recall, 1e-9)
}

func TestEvaluate_MicroEqualsAccuracy(t *testing.T) {
	gold := []string{"X", "X", "Y", "Z"}
	pred := []string{"X", "Y", "Y", "X"}

	eval, err := Evaluate(gold, pred, AverageMicro)
	require.NoError(t, err)

	assert.InDelta(t, eval.Accuracy, eval.Precision, 1e-9)
	assert.InDelta(t, eval.Accuracy, eval.Recall, 1e-9)
	assert.InDelta(t, eval.Accuracy, eval.F1, 1e-9)
}

func TestEvaluate_WeightedAveraging(t *testing.T) {
	gold := []string{"X", "X", "X", "Y"}
	pred := []string{"X", "X", "Y", "Y"}

	eval, err := Evaluate(gold, pred, AverageWeighted)
	require.NoError(t, err)

	// X: P=1, R=2/3, support 3. Y: P=0.5, R=1, support 1.
	assert.InDelta(t, 0.75*1.0+0.25*0.5, eval.Precision, 1e-9)
	assert.InDelta(t, 0.75*(2.0/3.0)+0.25*1.0, eval.Recall, 1e-9)
}

func TestEvaluate_ZeroDivisionScoresZero(t *testing.T) {
	// "Y" is never predicted, so its precision denominator is zero.
	gold := []string{"X", "Y"}
	pred := []string{"X", "X"}

	eval, err := Evaluate(gold, pred, AverageMacro)
	require.NoError(t, err)

	require.Len(t, eval.Report, 2)
	y := eval.Report[1]
	assert.Equal(t, "Y", y.Label)
	assert.Equal(t, 0.0, y.Precision)
	assert.Equal(t, 0.0, y.Recall)
	assert.Equal(t, 0.0, y.F1)
	assert.Equal(t, 1, y.Support)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate([]string{"X"}, []string{"X", "Y"}, AverageMacro)
	require.Error(t, err)

	_, err = Evaluate(nil, nil, AverageMacro)
	require.Error(t, err)

	_, err = Evaluate([]string{"X"}, []string{"X"}, "harmonic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "averaging")
}
