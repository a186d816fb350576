// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"sort"

	"github.com/danielhkuo/unanimy/models"
)

// Vote values with special meaning
const (
	VetoValue      = -2
	SatisfiedValue = 1
)

// OptionVotes is the scoring input for a single option
type OptionVotes struct {
	OptionID string
	Votes    []int
}

// Stats represents the aggregates for a single option
type Stats struct {
	OptionID       string `json:"decisionItemId"`
	TotalScore     int    `json:"totalScore"`
	SatisfiedCount int    `json:"satisfiedCount"`
	VetoCount      int    `json:"vetoCount"`
}

// Result holds the winner (nil when there are no options) and per-option
// stats in input order
type Result struct {
	WinnerOptionID *string
	Stats          []Stats
}

// Compute picks a winner from the options according to algorithm.
//
// When allowVeto is set and any option carries a veto, only unvetoed options
// are candidates; if every option is vetoed the full set is used instead.
// Ties that survive the algorithm's criteria go to the lowest option ID, so the
// winner does not depend on the order of options.
func Compute(algorithm string, allowVeto bool, options []OptionVotes) Result {
	stats := make([]Stats, len(options))
	anyVeto := false
	for i, opt := range options {
		stats[i] = tally(opt)
		if stats[i].VetoCount > 0 {
			anyVeto = true
		}
	}

	pool := stats
	if allowVeto && anyVeto {
		nonVetoed := make([]Stats, 0, len(stats))
		for _, s := range stats {
			if s.VetoCount == 0 {
				nonVetoed = append(nonVetoed, s)
			}
		}
		if len(nonVetoed) > 0 {
			pool = nonVetoed
		}
	}

	if len(pool) == 0 {
		return Result{Stats: stats}
	}

	// Sort a copy so stats keep input order
	ranked := make([]Stats, len(pool))
	copy(ranked, pool)
	sort.Slice(ranked, func(i, j int) bool {
		return better(algorithm, ranked[i], ranked[j])
	})

	winner := ranked[0].OptionID
	return Result{WinnerOptionID: &winner, Stats: stats}
}

// better reports whether a ranks strictly ahead of b
func better(algorithm string, a, b Stats) bool {
	if algorithm == models.AlgorithmMostSatisfied {
		// 1. More satisfied voters wins
		if a.SatisfiedCount != b.SatisfiedCount {
			return a.SatisfiedCount > b.SatisfiedCount
		}
		// 2. Higher total breaks the tie
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
	} else if a.TotalScore != b.TotalScore {
		// collective (and anything unrecognised): higher total wins
		return a.TotalScore > b.TotalScore
	}

	// Stable tie-breaking by option ID (ascending)
	return a.OptionID < b.OptionID
}

func tally(opt OptionVotes) Stats {
	s := Stats{OptionID: opt.OptionID}
	for _, v := range opt.Votes {
		s.TotalScore += v
		if v >= SatisfiedValue {
			s.SatisfiedCount++
		}
		if v == VetoValue {
			s.VetoCount++
		}
	}
	return s
}
