package emergency

import "time"

// DisruptionWeights are the w1/w2/w3 coefficients from spec.md §4.5;
// they must sum to 1.
type DisruptionWeights struct {
	Bumped   float64
	Overtime float64
	Wait     float64
}

// DefaultDisruptionWeights weights bumping most heavily: a bumped
// surgery is the most visible disruption to patients and staff.
func DefaultDisruptionWeights() DisruptionWeights {
	return DisruptionWeights{Bumped: 0.5, Overtime: 0.3, Wait: 0.2}
}

// score computes the 0..1 disruption score (spec.md §4.5):
//
//	w1*(bumpedCount/totalScheduled) + w2*(overtimeMinutes/dailyCapacity) + w3*(waitMinutes/maxWait)
func score(weights DisruptionWeights, bumpedCount, totalScheduled int, overtimeMinutes, dailyCapacityMinutes, waitMinutes float64, maxWait time.Duration) float64 {
	bumpTerm := 0.0
	if totalScheduled > 0 {
		bumpTerm = float64(bumpedCount) / float64(totalScheduled)
	}
	overtimeTerm := 0.0
	if dailyCapacityMinutes > 0 {
		overtimeTerm = overtimeMinutes / dailyCapacityMinutes
	}
	waitTerm := 0.0
	if maxWait > 0 {
		waitTerm = waitMinutes / maxWait.Minutes()
	}
	return weights.Bumped*bumpTerm + weights.Overtime*overtimeTerm + weights.Wait*waitTerm
}
