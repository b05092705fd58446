// Package interval implements closed power intervals and merged interval
// sets. A Set describes every aggregate output a group of generating units
// can reach; it is not necessarily contiguous.
package interval

import (
	"fmt"
	"iter"
	"math"
	"sort"
	"strings"
)

// Epsilon absorbs floating point noise when comparing interval bounds.
const Epsilon = 1e-9

// Interval is the closed range [Lo, Hi] with 0 <= Lo <= Hi.
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Point returns the degenerate interval [x, x].
func Point(x float64) Interval { return Interval{Lo: x, Hi: x} }

// Contains reports whether x lies within the closed bounds of i.
func (i Interval) Contains(x float64) bool {
	return x >= i.Lo-Epsilon && x <= i.Hi+Epsilon
}

// Span returns Hi - Lo.
func (i Interval) Span() float64 { return i.Hi - i.Lo }

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Lo, i.Hi)
}

// Merge joins a and b when the start of one lies within the closed span of
// the other. The result is the minimal interval enclosing both.
func Merge(a, b Interval) (Interval, bool) {
	if b.Lo < a.Lo {
		a, b = b, a
	}
	if b.Lo > a.Hi+Epsilon {
		return Interval{}, false
	}
	return Interval{Lo: a.Lo, Hi: math.Max(a.Hi, b.Hi)}, true
}

// Set is an ordered list of intervals. Values returned by this package are
// always merged: sorted by Lo, pairwise disjoint and non-touching.
type Set []Interval

// Of builds a merged Set from the given intervals.
func Of(ivs ...Interval) Set { return MergeAll(Set(ivs)) }

// MergeAll merges every mergeable pair of s and returns the result sorted by
// lower bound. The input is left untouched. MergeAll is idempotent.
func MergeAll(s Set) Set {
	if len(s) == 0 {
		return nil
	}
	sorted := make(Set, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })

	out := make(Set, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if m, ok := Merge(cur, next); ok {
			cur = m
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

// Sum returns every aggregate output reachable by running a alone, b alone,
// or one interval of a together with one interval of b. It is the
// achievable range of two independent, interval-constrained sources.
func Sum(a, b Set) Set {
	out := make(Set, 0, len(a)+len(b)+len(a)*len(b))
	out = append(out, a...)
	for _, nb := range b {
		out = append(out, nb)
		for _, na := range a {
			out = append(out, Interval{Lo: na.Lo + nb.Lo, Hi: na.Hi + nb.Hi})
		}
	}
	return MergeAll(out)
}

// Contains reports whether x falls within one of the intervals of s.
func (s Set) Contains(x float64) bool {
	for _, iv := range s {
		if iv.Contains(x) {
			return true
		}
	}
	return false
}

// ShiftClampZero subtracts d from both bounds of every interval, flooring
// negative bounds to zero.
func (s Set) ShiftClampZero(d float64) Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for i, iv := range s {
		out[i] = Interval{Lo: math.Max(iv.Lo-d, 0), Hi: math.Max(iv.Hi-d, 0)}
	}
	return out
}

// Min returns the lower bound of the first interval, or 0 for an empty set.
func (s Set) Min() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[0].Lo
}

// Max returns the upper bound of the last interval, or 0 for an empty set.
func (s Set) Max() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Hi
}

// Equal compares two sets bound by bound within Epsilon.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if math.Abs(s[i].Lo-o[i].Lo) > Epsilon || math.Abs(s[i].Hi-o[i].Hi) > Epsilon {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, iv := range s {
		parts[i] = iv.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// MaxSubsetItems bounds Subsets; beyond it the enumeration would not fit a
// 64-bit counter.
const MaxSubsetItems = 62

// Subsets yields every non-empty subset of {0, ..., n-1} as an ascending
// index slice. Order follows a binary counter: the k-th subset holds index i
// when bit i of k is set, so {0} comes first and {0, ..., n-1} last.
// Each yielded slice is freshly allocated.
func Subsets(n int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if n <= 0 || n > MaxSubsetItems {
			return
		}
		total := uint64(1) << uint(n)
		for k := uint64(1); k < total; k++ {
			subset := make([]int, 0, n)
			for i := 0; i < n; i++ {
				if k&(uint64(1)<<uint(i)) != 0 {
					subset = append(subset, i)
				}
			}
			if !yield(subset) {
				return
			}
		}
	}
}

// PowerSet collects Subsets(n).
func PowerSet(n int) [][]int {
	var out [][]int
	for s := range Subsets(n) {
		out = append(out, s)
	}
	return out
}
