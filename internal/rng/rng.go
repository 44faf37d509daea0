// Package rng owns the deterministic random streams used by the
// generation pipeline. Every stage draws from its own sub-stream derived
// from (seed, stage label), so changing one stage's sampling never
// perturbs another stage, and per-record streams derived from
// (seed, stage, index) make parallel generation reproducible.
package rng

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// Context derives independent sub-streams from a single root seed.
type Context struct {
	seed int64
}

// New creates a stream context for the given root seed.
func New(seed int64) *Context {
	return &Context{seed: seed}
}

// Seed returns the root seed.
func (c *Context) Seed() int64 {
	return c.seed
}

// Stream returns the deterministic sub-stream for a stage label.
func (c *Context) Stream(stage string) *rand.Rand {
	return rand.New(rand.NewSource(c.subSeed(stage, 0)))
}

// RecordStream returns the deterministic sub-stream for one record within
// a stage. Sequential and parallel generation sample identically because
// each record owns its stream.
func (c *Context) RecordStream(stage string, index int) *rand.Rand {
	return rand.New(rand.NewSource(c.subSeed(stage, uint64(index)+1)))
}

// subSeed mixes the root seed, the stage label and the record ordinal into
// a well-distributed 63-bit seed.
func (c *Context) subSeed(stage string, ordinal uint64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(stage))
	x := h.Sum64() ^ uint64(c.seed)*0x9e3779b97f4a7c15 ^ ordinal*0xbf58476d1ce4e5b9
	return int64(splitmix64(x) >> 1)
}

// splitmix64 is the finalizer from the SplitMix64 generator; it spreads
// closely related inputs across the full 64-bit range.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// WeightedIndex draws an index with the given weights. Weights must be
// non-negative; the catalog validates they sum to 1.0 but any positive sum
// works here.
func WeightedIndex(r *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	target := r.Float64() * total
	for i, w := range weights {
		target -= w
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Poisson draws from a Poisson distribution with the given mean using
// Knuth's method; fine for the small means the catalog configures.
func Poisson(r *rand.Rand, mean float64) int {
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= r.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// ClampedExp draws from an exponential distribution with the given mean,
// capped at max.
func ClampedExp(r *rand.Rand, mean float64, max int) int {
	v := int(r.ExpFloat64() * mean)
	if v > max {
		return max
	}
	return v
}
