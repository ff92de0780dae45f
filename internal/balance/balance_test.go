package balance

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(ratings ...int) []Candidate {
	out := make([]Candidate, len(ratings))
	for i, r := range ratings {
		out[i] = Candidate{UserID: fmt.Sprintf("p%d", i), MMR: r}
	}
	return out
}

func ids(team []Candidate) []string {
	return lo.Map(team, func(c Candidate, _ int) string { return c.UserID })
}

func TestSplitPartitionsRoster(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
	}{
		{name: "two players", ratings: []int{1000, 1200}},
		{name: "four players", ratings: []int{900, 1000, 1100, 1200}},
		{name: "ten equal", ratings: []int{1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000}},
		{name: "ten spread", ratings: []int{620, 780, 850, 910, 1000, 1040, 1150, 1230, 1390, 1600}},
		{name: "twelve", ratings: []int{500, 600, 700, 800, 900, 1000, 1100, 1200, 1300, 1400, 1500, 1600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(0); seed < 20; seed++ {
				b := New(rand.New(rand.NewPCG(seed, seed+1)))
				players := roster(tt.ratings...)
				res, err := b.Split(players)
				require.NoError(t, err)

				a, bb := ids(res.TeamA), ids(res.TeamB)
				assert.Len(t, a, len(players)/2)
				assert.Len(t, bb, len(players)/2)
				assert.Empty(t, lo.Intersect(a, bb), "no player on both teams")
				assert.ElementsMatch(t, ids(players), append(a, bb...))
			}
		})
	}
}

func TestSplitAverages(t *testing.T) {
	b := New(rand.New(rand.NewPCG(7, 7)))
	res, err := b.Split(roster(800, 900, 1000, 1100, 1200, 1300))
	require.NoError(t, err)

	sum := func(team []Candidate) int {
		return lo.SumBy(team, func(c Candidate) int { return c.MMR })
	}
	assert.InDelta(t, float64(sum(res.TeamA))/3, res.AvgA, 1e-9)
	assert.InDelta(t, float64(sum(res.TeamB))/3, res.AvgB, 1e-9)
}

func TestSplitPrefersBalancedTeams(t *testing.T) {
	// the worst split (top five vs bottom five) differs by 500 on average
	players := roster(500, 600, 700, 800, 900, 1100, 1200, 1300, 1400, 1500)
	for seed := uint64(0); seed < 50; seed++ {
		b := New(rand.New(rand.NewPCG(seed, 99)))
		res, err := b.Split(players)
		require.NoError(t, err)
		assert.Less(t, math.Abs(res.AvgA-res.AvgB), 100.0)
	}
}

func TestSplitVariesBetweenRuns(t *testing.T) {
	players := roster(1000, 1010, 1020, 1030, 1040, 1050, 1060, 1070, 1080, 1090)
	seen := map[string]struct{}{}
	for seed := uint64(0); seed < 40; seed++ {
		b := New(rand.New(rand.NewPCG(seed, 3)))
		res, err := b.Split(players)
		require.NoError(t, err)
		a := ids(res.TeamA)
		if lo.Contains(a, "p0") {
			seen[fmt.Sprint(a)] = struct{}{}
		} else {
			seen[fmt.Sprint(ids(res.TeamB))] = struct{}{}
		}
	}
	assert.Greater(t, len(seen), 1, "near-optimal splits are chosen at random")
}

func TestSplitRejectsBadRosters(t *testing.T) {
	b := NewRandom()

	_, err := b.Split(nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)

	_, err = b.Split(roster(1000, 1000, 1000))
	assert.ErrorIs(t, err, ErrOddRoster)

	_, err = b.Split(roster(make([]int, MaxRoster+2)...))
	assert.ErrorIs(t, err, ErrRosterTooBig)

	dup := roster(1000, 1100)
	dup[1].UserID = dup[0].UserID
	_, err = b.Split(dup)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}
