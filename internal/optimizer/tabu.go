// Package optimizer implements the Tabu Search metaheuristic over
// Schedule neighborhoods (spec.md §4.4) and the weighted objective
// function used to compare candidates (spec.md §4.6). Both halves are
// pure relative to their inputs; the only side effect in this package
// is the optional Logger callback, which Run calls when it stops on an
// empty or fully tabu neighborhood and when a move improves the best
// cost. Skipped (infeasible or panicking) neighbors are not logged.
package optimizer

import (
	"context"
	"math"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

const costEpsilon = 1e-9

// Logger is the minimal structured-debug-logging surface optimizer
// needs; internal/obslog's logger satisfies it without this package
// importing zap directly.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugw(string, ...interface{}) {}

// Config bounds and tunes a single search run.
type Config struct {
	MaxIterations    int
	MaxNoImprovement int
	TabuTenure       int
	Weights          Weights
	Enabled          EnabledMoves
	Logger           Logger
}

// DefaultConfig matches spec.md §4.4/§4.6's stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations:    100,
		MaxNoImprovement: 20,
		TabuTenure:       10,
		Weights:          DefaultWeights(),
		Enabled:          AllMoves(),
		Logger:           noopLogger{},
	}
}

// Result is the outcome of a Run: the best schedule found, its cost,
// and why the search stopped.
type Result struct {
	Best             entity.Schedule
	BestCost         Breakdown
	Iterations       int
	ImprovementCount int
	Cancelled        bool
}

// tabuList is tenure-based tabu memory: each fingerprint key maps to
// the iteration at which it becomes admissible again.
type tabuList struct {
	expiresAt map[string]int
}

func newTabuList() *tabuList {
	return &tabuList{expiresAt: make(map[string]int)}
}

func (t *tabuList) isTabu(key string, iteration int) bool {
	until, ok := t.expiresAt[key]
	return ok && iteration < until
}

func (t *tabuList) insert(key string, iteration, tenure int) {
	t.expiresAt[key] = iteration + tenure
}

// Run executes the Tabu Search loop starting from initial until one of
// the termination conditions in spec.md §4.4 is met: MaxIterations
// reached, MaxNoImprovement consecutive non-improving iterations, the
// neighborhood is empty, no neighbor is admissible (all tabu without
// aspiration), or ctx is cancelled (in which case the
// best-so-far schedule is returned with Cancelled set).
func Run(ctx context.Context, initial entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker, cfg Config) Result {
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	current := initial
	best := initial
	bestCost := Cost(best, snapshot, cfg.Weights)
	tabu := newTabuList()

	noImprovement := 0
	improvementCount := 0
	iteration := 0

	for ; iteration < cfg.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			return Result{Best: best, BestCost: bestCost, Iterations: iteration, ImprovementCount: improvementCount, Cancelled: true}
		}
		if noImprovement >= cfg.MaxNoImprovement {
			break
		}

		neighbors := Generate(current, snapshot, resolver, checker, cfg.Enabled)
		if len(neighbors) == 0 {
			cfg.Logger.Debugw("optimizer: empty neighborhood, stopping", "iteration", iteration)
			break
		}

		chosen, chosenCost, ok := selectMove(neighbors, snapshot, cfg.Weights, tabu, iteration, bestCost.Total)
		if !ok {
			cfg.Logger.Debugw("optimizer: no admissible neighbor, stopping", "iteration", iteration)
			break
		}

		tabu.insert(chosen.Fingerprint.Key(), iteration, cfg.TabuTenure)
		current = chosen.Schedule

		if chosenCost.Total < bestCost.Total-costEpsilon {
			best = current
			bestCost = chosenCost
			noImprovement = 0
			improvementCount++
			cfg.Logger.Debugw("optimizer: improved", "iteration", iteration, "cost", chosenCost.Total)
		} else {
			noImprovement++
		}
	}

	return Result{Best: best, BestCost: bestCost, Iterations: iteration, ImprovementCount: improvementCount, Cancelled: false}
}

// selectMove picks the admissible neighbor with the lowest cost,
// breaking ties by lower fingerprint (Fingerprint.Less: move kind,
// then surgery ids, then target room); only neighbors with equal
// fingerprints fall through to the lower cost of the destination
// room's own sequence.
func selectMove(neighbors []Neighbor, snapshot entity.RunSnapshot, weights Weights, tabu *tabuList, iteration int, bestCostSoFar float64) (Neighbor, Breakdown, bool) {
	type candidate struct {
		neighbor Neighbor
		cost     Breakdown
	}

	var admissible []candidate
	for _, n := range neighbors {
		cost := Cost(n.Schedule, snapshot, weights)
		tabuHit := tabu.isTabu(n.Fingerprint.Key(), iteration)
		aspirates := cost.Total < bestCostSoFar-costEpsilon
		if tabuHit && !aspirates {
			continue
		}
		admissible = append(admissible, candidate{n, cost})
	}
	if len(admissible) == 0 {
		return Neighbor{}, Breakdown{}, false
	}

	minCost := admissible[0].cost.Total
	for _, c := range admissible[1:] {
		if c.cost.Total < minCost {
			minCost = c.cost.Total
		}
	}

	best := admissible[0]
	bestRoomSeqCost := roomSequenceCost(admissible[0].neighbor, snapshot, weights)
	for _, c := range admissible[1:] {
		if math.Abs(c.cost.Total-minCost) > costEpsilon {
			continue
		}
		if math.Abs(c.cost.Total-best.cost.Total) > costEpsilon {
			best, bestRoomSeqCost = c, roomSequenceCost(c.neighbor, snapshot, weights)
			continue
		}
		if c.neighbor.Fingerprint.Less(best.neighbor.Fingerprint) {
			best, bestRoomSeqCost = c, roomSequenceCost(c.neighbor, snapshot, weights)
			continue
		}
		if !best.neighbor.Fingerprint.Less(c.neighbor.Fingerprint) {
			seqCost := roomSequenceCost(c.neighbor, snapshot, weights)
			if seqCost < bestRoomSeqCost {
				best, bestRoomSeqCost = c, seqCost
			}
		}
	}
	return best.neighbor, best.cost, true
}

// roomSequenceCost is the SDST+overtime cost of just the destination
// room's own sequence, used as a secondary tie-break.
func roomSequenceCost(n Neighbor, snapshot entity.RunSnapshot, weights Weights) float64 {
	room, ok := snapshot.RoomByID(n.Fingerprint.RoomTarget)
	if !ok {
		return math.MaxFloat64
	}
	total := 0.0
	for _, a := range n.Schedule.InRoom(room.ID) {
		total += float64(a.AppliedSetupMinutes) * weights.SDST
		if a.End.After(room.CloseTime) {
			total += a.End.Sub(room.CloseTime).Minutes() * weights.Overtime
		}
	}
	return total
}
