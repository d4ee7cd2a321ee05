package eval

import (
	"fmt"
	"sort"
)

// ClassMetrics holds per-class precision/recall/F1 with support.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Metrics summarizes agreement between human labels and model labels for one
// classification dimension. Macro averages weight every class equally; a
// class absent from either side contributes zero (sklearn's zero_division=0).
type Metrics struct {
	Accuracy       float64                 `json:"accuracy"`
	PrecisionMacro float64                 `json:"precision_macro"`
	RecallMacro    float64                 `json:"recall_macro"`
	F1Macro        float64                 `json:"f1_macro"`
	ExactMatches   int                     `json:"exact_matches"`
	TotalSamples   int                     `json:"total_samples"`
	Classes        []string                `json:"classes"`
	PerClass       map[string]ClassMetrics `json:"per_class"`
}

// Classification compares human labels (truth) against model labels
// (prediction). Labels are normalized before comparison; pairs where either
// side is empty are dropped.
func Classification(human, model []string) (Metrics, error) {
	if len(human) != len(model) {
		return Metrics{}, fmt.Errorf("label count mismatch: %d vs %d", len(human), len(model))
	}

	var yTrue, yPred []string
	for i := range human {
		t := NormalizeText(human[i])
		p := NormalizeText(model[i])
		if t == "" || p == "" {
			continue
		}
		yTrue = append(yTrue, t)
		yPred = append(yPred, p)
	}
	if len(yTrue) == 0 {
		return Metrics{}, fmt.Errorf("no usable label pairs")
	}

	classSet := map[string]bool{}
	for _, c := range yTrue {
		classSet[c] = true
	}
	for _, c := range yPred {
		classSet[c] = true
	}
	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	m := Metrics{
		TotalSamples: len(yTrue),
		Classes:      classes,
		PerClass:     make(map[string]ClassMetrics, len(classes)),
	}

	tp := map[string]int{}
	fp := map[string]int{}
	fn := map[string]int{}
	support := map[string]int{}
	for i := range yTrue {
		support[yTrue[i]]++
		if yTrue[i] == yPred[i] {
			m.ExactMatches++
			tp[yTrue[i]]++
		} else {
			fp[yPred[i]]++
			fn[yTrue[i]]++
		}
	}
	m.Accuracy = float64(m.ExactMatches) / float64(m.TotalSamples)

	var sumP, sumR, sumF float64
	for _, c := range classes {
		var p, r, f float64
		if tp[c]+fp[c] > 0 {
			p = float64(tp[c]) / float64(tp[c]+fp[c])
		}
		if tp[c]+fn[c] > 0 {
			r = float64(tp[c]) / float64(tp[c]+fn[c])
		}
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		m.PerClass[c] = ClassMetrics{Precision: p, Recall: r, F1: f, Support: support[c]}
		sumP += p
		sumR += r
		sumF += f
	}
	n := float64(len(classes))
	m.PrecisionMacro = sumP / n
	m.RecallMacro = sumR / n
	m.F1Macro = sumF / n
	return m, nil
}

// Dimensions are the four labeled sentiment dimensions a human-reviewed
// sample carries, in report order.
var Dimensions = []string{
	"Overall Sentiment",
	"Prospect Emotion",
	"Agent Emotion",
	"Interest Level",
}

// LabelPairs is one dimension's human/model label columns.
type LabelPairs struct {
	Human []string
	Model []string
}

// EvaluateDimensions computes metrics for each labeled dimension.
func EvaluateDimensions(pairs map[string]LabelPairs) (map[string]Metrics, error) {
	out := make(map[string]Metrics, len(pairs))
	for dim, p := range pairs {
		m, err := Classification(p.Human, p.Model)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dim, err)
		}
		out[dim] = m
	}
	return out, nil
}
