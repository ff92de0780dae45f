// Package draft resolves ban, map and side votes by plurality with random tie-breaks.
package draft

import (
	"errors"
	"matchbot/internal/domain"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/samber/lo"
)

var ErrNoMaps = errors.New("no maps left to pick from")

var Sides = []string{string(domain.SideCT), string(domain.SideT)}

type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

func NewRandom() *Engine {
	return New(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// PreferredBans picks totalBans maps from pool, most voted first. Once no voted
// map is left the first remaining map in pool order is taken. The result is in
// pool order.
func (e *Engine) PreferredBans(pool []string, votes []string, totalBans int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	counts := lo.CountValues(lo.Filter(votes, func(v string, _ int) bool {
		return slices.Contains(pool, v)
	}))
	remaining := slices.Clone(pool)
	var bans []string
	for len(bans) < totalBans && len(remaining) > 0 {
		best := 0
		var leaders []string
		for _, m := range remaining {
			switch c := counts[m]; {
			case c > best:
				best = c
				leaders = []string{m}
			case c == best && c > 0:
				leaders = append(leaders, m)
			}
		}
		choice := remaining[0]
		if len(leaders) > 0 {
			choice = leaders[e.rng.IntN(len(leaders))]
		}
		bans = append(bans, choice)
		remaining = slices.DeleteFunc(remaining, func(m string) bool { return m == choice })
	}

	slices.SortFunc(bans, func(a, b string) int {
		return slices.Index(pool, a) - slices.Index(pool, b)
	})
	return bans
}

// PreferredMap picks the most voted map that is not banned.
func (e *Engine) PreferredMap(pool []string, banned []string, votes []string) (string, error) {
	remaining := RemainingMaps(pool, banned)
	if len(remaining) == 0 {
		return "", ErrNoMaps
	}
	return e.plurality(remaining, votes), nil
}

// PreferredSide picks the most voted side, CT when nobody voted.
func (e *Engine) PreferredSide(votes []string) domain.Side {
	return domain.Side(e.plurality(Sides, votes))
}

// plurality shuffles the votes and takes the first option to reach the top
// count, which is a uniform tie-break. Without valid votes options[0] wins.
func (e *Engine) plurality(options []string, votes []string) string {
	valid := lo.Filter(votes, func(v string, _ int) bool {
		return slices.Contains(options, v)
	})
	if len(valid) == 0 {
		return options[0]
	}

	e.mu.Lock()
	e.rng.Shuffle(len(valid), func(i, j int) { valid[i], valid[j] = valid[j], valid[i] })
	e.mu.Unlock()

	counts := make(map[string]int, len(options))
	var order []string
	for _, v := range valid {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	winner := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[winner] {
			winner = v
		}
	}
	return winner
}

func Complement(side domain.Side) domain.Side {
	if side == domain.SideCT {
		return domain.SideT
	}
	return domain.SideCT
}

// RemainingMaps returns pool without any banned map, in pool order.
func RemainingMaps(pool []string, banned ...[]string) []string {
	all := lo.Flatten(banned)
	return lo.Filter(pool, func(m string, _ int) bool {
		return !slices.Contains(all, m)
	})
}
