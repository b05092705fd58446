package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/interval"
)

func TestBuildTiers_GroupsEqualCost(t *testing.T) {
	req := request(910, 60, referenceFleet()...)
	tiers := BuildTiers(req.Units())
	require.Len(t, tiers, 4)

	names := func(tr Tier) []string {
		var out []string
		for _, u := range tr.Units {
			out = append(out, u.Plant.Name)
		}
		return out
	}
	assert.Equal(t, 0.0, tiers[0].Cost)
	assert.Equal(t, []string{"windpark1", "windpark2"}, names(tiers[0]))
	assert.Equal(t, 25.28, tiers[1].Cost)
	assert.Equal(t, []string{"gasfiredbig1", "gasfiredbig2"}, names(tiers[1]))
	assert.Equal(t, 36.22, tiers[2].Cost)
	assert.Equal(t, 169.33, tiers[3].Cost)
}

func TestBuildTiers_Empty(t *testing.T) {
	assert.Empty(t, BuildTiers(nil))
}

func TestTierRanges(t *testing.T) {
	req := request(910, 60, referenceFleet()...)
	ranges := TierRanges(BuildTiers(req.Units()))
	require.Len(t, ranges, 4)
	assert.True(t, ranges[0].Equal(interval.Set{{Lo: 21.6, Hi: 21.6}, {Lo: 90, Hi: 90}, {Lo: 111.6, Hi: 111.6}}), "wind: %s", ranges[0])
	assert.True(t, ranges[1].Equal(interval.Set{{Lo: 100, Hi: 920}}), "gas: %s", ranges[1])
	assert.True(t, ranges[2].Equal(interval.Set{{Lo: 40, Hi: 210}}))
	assert.True(t, ranges[3].Equal(interval.Set{{Lo: 0, Hi: 16}}))
}

func TestSubsetCache(t *testing.T) {
	ranges := []interval.Set{
		{{Lo: 0, Hi: 10}},
		{{Lo: 50, Hi: 60}},
		{{Lo: 100, Hi: 100}},
	}
	c := newSubsetCache(ranges)
	assert.Equal(t, 3, c.Len(), "singletons are seeded")

	direct := interval.Sum(interval.Sum(ranges[0], ranges[1]), ranges[2])
	got := c.Range([]int{0, 1, 2})
	assert.True(t, got.Equal(direct), "got %s want %s", got, direct)
	assert.Equal(t, 4, c.Len())

	// {0,1} was not needed for {0,1,2} since it extends {0} directly.
	_, ok := c.byKey["0,1"]
	assert.False(t, ok)

	c.Range([]int{0, 1})
	before := c.Len()
	assert.True(t, c.Range([]int{0, 1}).Equal(interval.Sum(ranges[0], ranges[1])))
	assert.Equal(t, before, c.Len(), "cached subsets are not recomputed")
}

func TestSubsetCache_Available(t *testing.T) {
	req := request(910, 60, referenceFleet()...)
	c := newSubsetCache(TierRanges(BuildTiers(req.Units())))
	full := c.Available()
	assert.Equal(t, 21.6, full.Min())
	assert.InDelta(t, 111.6+920+210+16, full.Max(), 1e-9)
	for _, key := range []string{"0,1", "0,1,2", "0,1,2,3"} {
		_, ok := c.byKey[key]
		assert.True(t, ok, "prefix %s cached", key)
	}
	assert.Equal(t, full, Range(req))
}

func TestTierSolutionAdd(t *testing.T) {
	sol := newTierSolution(2)
	var total float64
	sol.add(0, 25.28, 100, &total)
	sol.add(0, 25.28, 0.5, &total)
	sol.add(1, 36.22, 10, &total)
	assert.Equal(t, 100.5, sol.Tiers[0].Load)
	assert.Equal(t, 2540.64, sol.Tiers[0].Cost)
	assert.Equal(t, 362.2, sol.Tiers[1].Cost)
	assert.Equal(t, 2902.84, sol.Cost)
}
