package dispatch

import "errors"

var (
	// ErrInfeasible indicates the load lies outside every power level the
	// fleet can reach.
	ErrInfeasible = errors.New("unable to distribute load, no solution found")
	// ErrNoFeasibleCombination indicates the global range check passed but
	// no tier combination could actually carry the load.
	ErrNoFeasibleCombination = errors.New("no feasible combination found")
	// ErrSearchBudgetExceeded is returned when the fallback search examines
	// more combinations than Config.MaxCombinations.
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
	// ErrFleetTooLarge rejects requests beyond Config.MaxPlants or MaxTiers.
	ErrFleetTooLarge = errors.New("fleet too large")
)
