// Package balance splits a roster into two equal teams with close average ratings.
//
// Every subset of half the roster is enumerated and ranked by how far its
// average sits from the mean of all subset averages. A slice of the best
// ranked subsets (2% of all combinations, widened in 2% steps) is searched for
// disjoint pairs and one of them is picked at random, so similar rosters do not
// always produce the same teams.
package balance

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/combin"
)

const (
	sliceStep = 0.02
	minPairs  = 5
	// C(20, 10) is ~185k subsets; beyond that enumeration stops being reasonable
	MaxRoster = 20
)

var (
	ErrEmptyRoster   = errors.New("roster is empty")
	ErrOddRoster     = errors.New("roster size must be even")
	ErrRosterTooBig  = fmt.Errorf("roster larger than %d players", MaxRoster)
	ErrDuplicateUser = errors.New("roster contains a player twice")
)

type Candidate struct {
	UserID string
	MMR    int
}

type Result struct {
	TeamA []Candidate
	TeamB []Candidate
	AvgA  float64
	AvgB  float64
}

type Balancer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(rng *rand.Rand) *Balancer {
	return &Balancer{rng: rng}
}

func NewRandom() *Balancer {
	return New(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

type subset struct {
	mask      uint64
	members   []int
	deviation float64
}

func (b *Balancer) Split(players []Candidate) (Result, error) {
	n := len(players)
	switch {
	case n == 0:
		return Result{}, ErrEmptyRoster
	case n%2 != 0:
		return Result{}, ErrOddRoster
	case n > MaxRoster:
		return Result{}, ErrRosterTooBig
	}
	seen := make(map[string]struct{}, n)
	for _, p := range players {
		if _, ok := seen[p.UserID]; ok {
			return Result{}, ErrDuplicateUser
		}
		seen[p.UserID] = struct{}{}
	}

	ratings := make([]float64, n)
	for i, p := range players {
		ratings[i] = float64(p.MMR)
	}

	combos := combin.Combinations(n, n/2)
	subsets := make([]subset, len(combos))
	avgs := make([]float64, len(combos))
	for i, combo := range combos {
		var mask uint64
		values := make([]float64, len(combo))
		for j, idx := range combo {
			mask |= 1 << uint(idx)
			values[j] = ratings[idx]
		}
		avgs[i] = stat.Mean(values, nil)
		subsets[i] = subset{mask: mask, members: combo}
	}
	grand := stat.Mean(avgs, nil)
	for i := range subsets {
		subsets[i].deviation = math.Abs(avgs[i] - grand)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// shuffle first so the stable sort breaks equal deviations at random
	b.rng.Shuffle(len(subsets), func(i, j int) {
		subsets[i], subsets[j] = subsets[j], subsets[i]
	})
	sort.SliceStable(subsets, func(i, j int) bool {
		return subsets[i].deviation < subsets[j].deviation
	})

	var pairs [][2]subset
	for fraction := sliceStep; ; fraction += sliceStep {
		size := int(math.Ceil(fraction * float64(len(subsets))))
		size = min(max(size, 2), len(subsets))
		pairs = disjointPairs(subsets[:size])
		if len(pairs) >= minPairs || size == len(subsets) {
			break
		}
	}
	// the full slice always contains a subset together with its complement
	pair := pairs[b.rng.IntN(len(pairs))]
	first, second := pair[0], pair[1]
	if b.rng.IntN(2) == 1 {
		first, second = second, first
	}

	res := Result{
		TeamA: pick(players, first.members),
		TeamB: pick(players, second.members),
	}
	res.AvgA = average(res.TeamA)
	res.AvgB = average(res.TeamB)
	return res, nil
}

func disjointPairs(elite []subset) [][2]subset {
	var pairs [][2]subset
	for i := 0; i < len(elite); i++ {
		for j := i + 1; j < len(elite); j++ {
			if elite[i].mask&elite[j].mask == 0 {
				pairs = append(pairs, [2]subset{elite[i], elite[j]})
			}
		}
	}
	return pairs
}

func pick(players []Candidate, idx []int) []Candidate {
	out := make([]Candidate, len(idx))
	for i, j := range idx {
		out[i] = players[j]
	}
	return out
}

func average(team []Candidate) float64 {
	values := make([]float64, len(team))
	for i, p := range team {
		values[i] = float64(p.MMR)
	}
	return stat.Mean(values, nil)
}
