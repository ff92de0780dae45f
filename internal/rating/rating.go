// Package rating computes per-player MMR deltas at match settlement.
package rating

import (
	"matchbot/internal/constants"
	"math"
)

type Outcome int

const (
	Loss Outcome = iota
	Win
	Abandon
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Abandon:
		return "abandon"
	}
	return "loss"
}

type Input struct {
	Kills    int
	Deaths   int
	Assists  int
	Outcome  Outcome
	OwnAvg   float64
	OppAvg   float64
	OwnScore int
	OppScore int
}

// minCloseness is the closeness factor of a drawn scoreline.
const minCloseness = 4.0 / 9.0

// ExpectedWin is the Elo expectation of the own team beating the opponent.
func ExpectedWin(ownAvg, oppAvg float64) float64 {
	return 1 / (1 + math.Pow(10, -(ownAvg-oppAvg)/400))
}

// CalculateMMRChange returns the rating delta for one player. The Elo term is
// taken as a magnitude so that the outcome alone decides the sign of the
// result before the K/D adjustment.
func CalculateMMRChange(in Input) float64 {
	k := float64(constants.BaseMMRChange)

	var base, won float64
	switch in.Outcome {
	case Win:
		base, won = k, 1
	case Abandon:
		base = -2 * k
	default:
		base = -k
	}

	kdRate := (k / 5) * ((float64(in.Kills) + float64(in.Assists)/2) - float64(in.Deaths)) / 10
	closeness := minCloseness + (math.Abs(float64(in.OwnScore-in.OppScore))/10)*(1-minCloseness)

	delta := base * math.Abs(won-ExpectedWin(in.OwnAvg, in.OppAvg))
	delta *= closeness
	return delta + kdRate
}

// Apply rounds the delta to the integer change stored with the player.
func Apply(in Input) int {
	return int(math.Round(CalculateMMRChange(in)))
}
