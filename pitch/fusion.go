package pitch

import (
	"github.com/audiolens/pitchtrace/logging"
	"gonum.org/v1/gonum/stat"
)

// ConsistencyThreshold is the population standard deviation, in Hz, under
// which estimates are considered to agree and are averaged instead of voted.
const ConsistencyThreshold = 10.0

// Method reliability weights used when averaging agreeing estimates and when
// voting among disagreeing ones. YIN is the most reliable of the bundled
// methods on monophonic input.
var defaultWeights = map[Method]float64{
	MethodYIN:             0.8,
	MethodAutocorrelation: 0.6,
}

// Fuser combines estimates from several methods into one. Agreeing estimates
// are weight-averaged; disagreeing ones resolve to the highest-weight method.
// Methods with a configured weight have no native confidence, so the weight
// stands in for it throughout: it drives the frequency averaging, the fused
// confidence, and the vote.
type Fuser struct {
	weights   map[Method]float64
	threshold float64
}

// NewFuser creates a fuser with the default method weights.
func NewFuser() *Fuser {
	return &Fuser{
		weights:   defaultWeights,
		threshold: ConsistencyThreshold,
	}
}

// Weight returns the fusion weight for a method. Methods without a configured
// weight fall back to the estimate's own confidence at fusion time.
func (f *Fuser) Weight(m Method) (float64, bool) {
	w, ok := f.weights[m]
	return w, ok
}

// Fuse combines the given estimates. Undetected estimates are dropped first;
// an empty remainder fuses to a zero estimate, and a single survivor passes
// through unchanged.
func (f *Fuser) Fuse(estimates ...Estimate) Estimate {
	detected := make([]Estimate, 0, len(estimates))
	for _, est := range estimates {
		if est.Detected() {
			detected = append(detected, est)
		}
	}

	switch len(detected) {
	case 0:
		return Estimate{Method: MethodFused}
	case 1:
		return detected[0]
	}

	freqs := make([]float64, len(detected))
	for i, est := range detected {
		freqs[i] = est.Frequency
	}

	spread := stat.PopStdDev(freqs, nil)
	if spread < f.threshold {
		return f.weightedAverage(detected)
	}

	logging.Debug("pitch estimates disagree, voting by weight", logging.Fields{
		"spread_hz": spread,
		"estimates": len(detected),
	})

	return f.vote(detected)
}

func (f *Fuser) weightedAverage(detected []Estimate) Estimate {
	var freqSum, weightSum float64
	confidences := make([]float64, len(detected))

	for i, est := range detected {
		weight := f.weightOf(est)
		freqSum += est.Frequency * weight
		weightSum += weight
		confidences[i] = weight
	}

	if weightSum == 0 {
		return Estimate{Method: MethodFused}
	}

	return Estimate{
		Frequency:  freqSum / weightSum,
		Confidence: stat.Mean(confidences, nil),
		Method:     MethodFused,
	}
}

func (f *Fuser) vote(detected []Estimate) Estimate {
	best := detected[0]
	bestWeight := f.weightOf(best)

	for _, est := range detected[1:] {
		if w := f.weightOf(est); w > bestWeight {
			best = est
			bestWeight = w
		}
	}

	return Estimate{
		Frequency:  best.Frequency,
		Confidence: bestWeight,
		Method:     MethodFused,
	}
}

func (f *Fuser) weightOf(est Estimate) float64 {
	if w, ok := f.weights[est.Method]; ok {
		return w
	}
	return est.Confidence
}
