package dispatch

import (
	"strconv"
	"strings"

	"github.com/kilianp07/powerplan/core/interval"
)

// subsetCache memoises the aggregate range of tier subsets. Keys are the
// canonical ascending index sequence. Singletons are seeded on creation and
// larger subsets extend their longest cached prefix.
type subsetCache struct {
	ranges []interval.Set
	byKey  map[string]interval.Set
}

func newSubsetCache(ranges []interval.Set) *subsetCache {
	c := &subsetCache{ranges: ranges, byKey: make(map[string]interval.Set, 2*len(ranges))}
	for i, r := range ranges {
		c.byKey[subsetKey([]int{i})] = r
	}
	return c
}

func subsetKey(subset []int) string {
	var b strings.Builder
	for i, idx := range subset {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// Range returns the aggregate range of the ascending subset.
func (c *subsetCache) Range(subset []int) interval.Set {
	key := subsetKey(subset)
	if r, ok := c.byKey[key]; ok {
		return r
	}
	var base interval.Set
	start := 0
	for n := len(subset) - 1; n >= 1; n-- {
		if r, ok := c.byKey[subsetKey(subset[:n])]; ok {
			base, start = r, n
			break
		}
	}
	for _, idx := range subset[start:] {
		base = interval.Sum(base, c.ranges[idx])
	}
	c.byKey[key] = base
	return base
}

// Available caches every cheapest-first prefix and returns the range of the
// whole fleet.
func (c *subsetCache) Available() interval.Set {
	var full interval.Set
	prefix := make([]int, 0, len(c.ranges))
	for i := range c.ranges {
		prefix = append(prefix, i)
		full = c.Range(prefix)
	}
	return full
}

// Len reports the number of cached subsets.
func (c *subsetCache) Len() int { return len(c.byKey) }
