package dispatch

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/powerplan/core/model"
)

// lowerBound solves the continuous relaxation of the dispatch problem:
// minimise sum(cost_i * p_i) subject to sum(p_i) = load and
// 0 <= p_i <= max_i. Minimum outputs are dropped, so no plan for the same
// units can cost less than the returned value.
func lowerBound(units []model.Unit, load float64) (float64, error) {
	n := len(units)
	if n == 0 || load == 0 {
		return 0, nil
	}
	// Rows 0..n-1 cap each output, rows n..2n-1 keep it non-negative.
	c := make([]float64, n)
	g := mat.NewDense(2*n, n, nil)
	h := make([]float64, 2*n)
	A := mat.NewDense(1, n, nil)
	for i, u := range units {
		c[i] = u.Cost
		g.Set(i, i, 1)
		h[i] = u.Range.Hi
		g.Set(n+i, i, -1)
		A.Set(0, i, 1)
	}
	b := []float64{load}

	cStd, AStd, bStd := lp.Convert(c, g, h, A, b)
	opt, _, err := lp.Simplex(cStd, AStd, bStd, 1e-10, nil)
	if err != nil {
		return 0, err
	}
	return model.Round2(opt), nil
}

// lpBound points to the function used for the lower bound. It can be
// overridden in tests to simulate solver failures.
var lpBound = lowerBound
