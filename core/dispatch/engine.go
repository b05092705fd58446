package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/interval"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
)

// Strategy names how a plan was found.
type Strategy string

const (
	// StrategyIdle is used for a zero load: every plant is off.
	StrategyIdle Strategy = "idle"
	// StrategyGoldenPath is the greedy merit order walk.
	StrategyGoldenPath Strategy = "golden_path"
	// StrategyBruteForce is the exhaustive search over tier subsets.
	StrategyBruteForce Strategy = "brute_force"
)

// Plan is the outcome of a successful solve.
type Plan struct {
	ID       string   `json:"id"`
	Strategy Strategy `json:"strategy"`
	// Allocations covers every plant, cheapest tier first and input order
	// inside a tier.
	Allocations []model.Allocation `json:"allocations"`
	Tiers       []TierLoad         `json:"tiers"`
	// Cost is the sum over plants of output times marginal cost.
	Cost float64 `json:"cost"`
	// LowerBound is the cost of the continuous relaxation without minimum
	// outputs. Zero when the relaxation could not be solved.
	LowerBound   float64       `json:"lower_bound"`
	Combinations int           `json:"combinations"`
	Duration     time.Duration `json:"duration"`
}

// PlanPublisher receives a PlanEvent after every solve.
type PlanPublisher interface {
	Publish(events.PlanEvent)
}

// Engine computes least-cost production plans. It keeps no state between
// calls and is safe for concurrent use.
type Engine struct {
	cfg  Config
	log  logger.Logger
	sink metrics.MetricsSink
	bus  PlanPublisher
}

// NewEngine returns an engine using cfg limits. log, sink and bus may be
// nil.
func NewEngine(cfg Config, log logger.Logger, sink metrics.MetricsSink, bus PlanPublisher) *Engine {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{cfg: cfg, log: log, sink: sink, bus: bus}
}

// solveState carries what a failed solve still knows for reporting.
type solveState struct {
	units        []model.Unit
	tiers        int
	combinations int
}

// Solve validates req and computes its cheapest plan. Errors are a
// *model.ValidationError, ErrFleetTooLarge, ErrInfeasible,
// ErrNoFeasibleCombination, ErrSearchBudgetExceeded or a context error.
func (e *Engine) Solve(ctx context.Context, req model.Request) (Plan, error) {
	start := time.Now()
	var st solveState
	plan, err := e.solve(ctx, req, &st)
	plan.ID = uuid.NewString()
	plan.Duration = time.Since(start)
	if err != nil {
		plan = Plan{ID: plan.ID, Duration: plan.Duration, Combinations: st.combinations}
	}
	e.report(start, req, plan, st, err)
	return plan, err
}

func (e *Engine) solve(ctx context.Context, req model.Request, st *solveState) (Plan, error) {
	if err := req.Validate(); err != nil {
		return Plan{}, err
	}
	if n := len(req.PowerPlants); n > e.cfg.MaxPlants {
		return Plan{}, fmt.Errorf("%d power plants, limit is %d: %w", n, e.cfg.MaxPlants, ErrFleetTooLarge)
	}
	st.units = req.Units()
	tiers := BuildTiers(st.units)
	st.tiers = len(tiers)
	if len(tiers) > e.cfg.MaxTiers {
		return Plan{}, fmt.Errorf("%d cost tiers, limit is %d: %w", len(tiers), e.cfg.MaxTiers, ErrFleetTooLarge)
	}

	load := model.Round1(req.Load)
	if load == 0 {
		return idlePlan(tiers), nil
	}

	ranges := TierRanges(tiers)
	cache := newSubsetCache(ranges)
	available := cache.Available()
	e.log.Infof("load is %.1f MW, available power range is %s", load, available)
	if !available.Contains(load) {
		return Plan{}, fmt.Errorf("load %.1f MW outside %s: %w", load, available, ErrInfeasible)
	}

	plan := Plan{Strategy: StrategyGoldenPath}
	sol, ok := GoldenPath(load, tiers, ranges)
	if ok {
		e.log.Infof("found straightforward solution")
	} else {
		e.log.Infof("found no straightforward solution, brute forcing %d tiers", len(tiers))
		var err error
		sol, st.combinations, err = fallback(ctx, load, tiers, cache, e.cfg.MaxCombinations)
		if err != nil {
			return Plan{}, fmt.Errorf("fallback search: %w", err)
		}
		plan.Strategy = StrategyBruteForce
		plan.Combinations = st.combinations
	}

	allocs, cost, err := distribute(ctx, sol, tiers, &budget{limit: e.cfg.MaxCombinations})
	if err != nil {
		return Plan{}, err
	}
	plan.Allocations = allocs
	plan.Tiers = sol.Tiers
	plan.Cost = cost

	bound, err := lpBound(st.units, load)
	if err != nil {
		e.log.Warnf("lower bound unavailable: %v", err)
	}
	plan.LowerBound = bound
	return plan, nil
}

func idlePlan(tiers []Tier) Plan {
	plan := Plan{Strategy: StrategyIdle, Tiers: make([]TierLoad, len(tiers))}
	for _, t := range tiers {
		for _, u := range t.Units {
			plan.Allocations = append(plan.Allocations, u.Off())
		}
	}
	return plan
}

// distribute splits every tier load among the tier's units and prices the
// result from the rounded outputs. Unit subsets examined in every tier are
// charged to b.
func distribute(ctx context.Context, sol TierSolution, tiers []Tier, b *budget) ([]model.Allocation, float64, error) {
	var (
		out   []model.Allocation
		total float64
	)
	for i, t := range tiers {
		allocs, err := distributeTier(ctx, sol.Tiers[i].Load, t.Units, b)
		if err != nil {
			return nil, 0, fmt.Errorf("tier %d (%.2f/MWh): %w", i, t.Cost, err)
		}
		for _, a := range allocs {
			total += a.P * t.Cost
		}
		out = append(out, allocs...)
	}
	return out, model.Round2(total), nil
}

// Outcome maps a Solve error to its metrics label.
func Outcome(err error) string {
	var verr *model.ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &verr), errors.Is(err, ErrFleetTooLarge):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrInfeasible):
		return metrics.OutcomeInfeasible
	case errors.Is(err, ErrSearchBudgetExceeded):
		return metrics.OutcomeBudget
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeNoCombination
	}
}

func (e *Engine) report(start time.Time, req model.Request, plan Plan, st solveState, err error) {
	outcome := Outcome(err)
	if err != nil {
		e.log.Warnf("plan %s failed (%s): %v", plan.ID, outcome, err)
	} else {
		e.log.Infof("plan %s: %s, total cost %.2f (lower bound %.2f)", plan.ID, plan.Strategy, plan.Cost, plan.LowerBound)
		e.log.Debugw("plan tiers", map[string]any{"plan_id": plan.ID, "tiers": plan.Tiers, "allocations": plan.Allocations})
	}

	if rerr := e.sink.RecordSolve(metrics.SolveEvent{
		PlanID:       plan.ID,
		Strategy:     string(plan.Strategy),
		Outcome:      outcome,
		Load:         req.Load,
		Cost:         plan.Cost,
		LowerBound:   plan.LowerBound,
		Plants:       len(req.PowerPlants),
		Tiers:        st.tiers,
		Combinations: st.combinations,
		Duration:     plan.Duration,
		Time:         start,
	}); rerr != nil {
		e.log.Errorf("record solve metrics: %v", rerr)
	}
	if rec, ok := e.sink.(metrics.AllocationRecorder); ok && err == nil {
		if rerr := rec.RecordAllocations(allocationEvents(plan, st.units, start)); rerr != nil {
			e.log.Errorf("record allocation metrics: %v", rerr)
		}
	}

	if e.bus != nil {
		e.bus.Publish(events.PlanEvent{
			PlanID:       plan.ID,
			Time:         start,
			Load:         req.Load,
			WindPct:      req.Fuels.WindPct,
			Strategy:     string(plan.Strategy),
			Allocations:  plan.Allocations,
			Cost:         plan.Cost,
			LowerBound:   plan.LowerBound,
			Combinations: st.combinations,
			Duration:     plan.Duration,
			Err:          err,
		})
	}
}

func allocationEvents(plan Plan, units []model.Unit, at time.Time) []metrics.AllocationEvent {
	byName := make(map[string]model.Unit, len(units))
	for _, u := range units {
		byName[u.Plant.Name] = u
	}
	evs := make([]metrics.AllocationEvent, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		u := byName[a.Name]
		evs = append(evs, metrics.AllocationEvent{
			PlanID:     plan.ID,
			Plant:      a.Name,
			Type:       string(u.Plant.Type),
			PowerMW:    a.P,
			CostPerMWh: u.Cost,
			Time:       at,
		})
	}
	return evs
}

// Range returns the aggregate power levels the request's fleet can supply.
func Range(req model.Request) interval.Set {
	return newSubsetCache(TierRanges(BuildTiers(req.Units()))).Available()
}
