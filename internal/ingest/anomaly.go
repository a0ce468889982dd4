package ingest

import (
	"fmt"
	"math"
)

// minBaseline is the smallest history that yields a meaningful mean;
// readings with less history behind them are never flagged.
const minBaseline = 3

// Detector evaluates a candidate temperature against the mean of the
// device's recent history. Humidity carries no threshold rule.
type Detector struct {
	// Window is the number of recent readings forming the baseline.
	Window int
	// Tolerance is the maximum absolute deviation from the baseline
	// mean, in the same units as temperature.
	Tolerance float64
}

func NewDetector(window int, tolerance float64) *Detector {
	return &Detector{Window: window, Tolerance: tolerance}
}

// Evaluate reports whether candidateTemp deviates from the mean of
// history by strictly more than the tolerance, returning the baseline
// mean it compared against. history is newest-first and must not
// include the candidate itself; entries beyond the window are ignored.
// The description cites the candidate and the mean.
func (d *Detector) Evaluate(candidateTemp float64, history []float64) (bool, float64, string) {
	if len(history) > d.Window {
		history = history[:d.Window]
	}
	if len(history) < minBaseline {
		return false, 0, ""
	}

	var sum float64
	for _, t := range history {
		sum += t
	}
	mean := sum / float64(len(history))

	if math.Abs(candidateTemp-mean) > d.Tolerance {
		return true, mean, fmt.Sprintf("temp deviation %.2f vs avg %.2f", candidateTemp, mean)
	}
	return false, mean, ""
}
