// Package statistics aggregates simulated blackjack rounds.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// RoundResult is the outcome of one simulated round
type RoundResult struct {
	Seed        int64       // Worker seed the round's deck came from
	Status      game.Status // Terminal status
	PlayerScore int
	DealerScore int
	Hits        int // Cards the player drew after the deal
}

// PlayerBusted reports whether the player went over 21
func (r RoundResult) PlayerBusted() bool { return r.PlayerScore > 21 }

// DealerBusted reports whether the dealer went over 21
func (r RoundResult) DealerBusted() bool { return r.DealerScore > 21 }

// Statistics tracks aggregate results across rounds
type Statistics struct {
	Rounds    int
	SumScore  float64
	SumScore2 float64   // Sum of squares for variance calculation
	Values    []float64 // Player scores for median/percentile calculation

	PlayerWins  int
	DealerWins  int
	Draws       int
	PlayerBusts int // Counted in DealerWins
	DealerBusts int // Counted in PlayerWins
	Hits        int
}

// Add incorporates a round
func (s *Statistics) Add(r RoundResult) {
	score := float64(r.PlayerScore)
	s.Rounds++
	s.SumScore += score
	s.SumScore2 += score * score
	s.Values = append(s.Values, score)
	s.Hits += r.Hits

	switch r.Status {
	case game.FinishedPlayerWon:
		s.PlayerWins++
		if r.DealerBusted() {
			s.DealerBusts++
		}
	case game.FinishedDealerWon:
		s.DealerWins++
		if r.PlayerBusted() {
			s.PlayerBusts++
		}
	case game.FinishedDraw:
		s.Draws++
	}
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumScore += other.SumScore
	s.SumScore2 += other.SumScore2
	s.Values = append(s.Values, other.Values...)
	s.PlayerWins += other.PlayerWins
	s.DealerWins += other.DealerWins
	s.Draws += other.Draws
	s.PlayerBusts += other.PlayerBusts
	s.DealerBusts += other.DealerBusts
	s.Hits += other.Hits
}

// Mean returns the mean final player score
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumScore / float64(s.Rounds)
}

// Variance returns the sample variance of the player score
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumScore2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of the player score
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median player score
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the player score at p (0.0 to 1.0), interpolated
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// WinRate returns the fraction of rounds the player won
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.PlayerWins) / float64(s.Rounds)
}

// Validate checks the counters are consistent with each other
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if outcomes := s.PlayerWins + s.DealerWins + s.Draws; outcomes != s.Rounds {
		return fmt.Errorf("outcomes total (%d) does not match rounds (%d)", outcomes, s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values length (%d) does not match rounds (%d)", len(s.Values), s.Rounds)
	}
	if s.PlayerBusts > s.DealerWins {
		return fmt.Errorf("player busts (%d) exceed dealer wins (%d)", s.PlayerBusts, s.DealerWins)
	}
	if s.DealerBusts > s.PlayerWins {
		return fmt.Errorf("dealer busts (%d) exceed player wins (%d)", s.DealerBusts, s.PlayerWins)
	}
	return nil
}
