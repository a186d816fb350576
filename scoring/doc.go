// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scoring turns a decision's votes into a winner.

Compute is a pure function: no database access, no clock.

	r := scoring.Compute(models.AlgorithmCollective, true, []scoring.OptionVotes{
		{OptionID: "a", Votes: []int{2, 1, 2}},
		{OptionID: "b", Votes: []int{1, 1, 1}},
	})
	// *r.WinnerOptionID == "a"

# Statistics

For each option:

  - TotalScore: sum of vote values (each in [-2, 2])
  - SatisfiedCount: votes >= 1
  - VetoCount: votes == -2

# Veto Protection

With veto allowed, any veto anywhere restricts candidates to unvetoed options.
If every option has been vetoed, all options stay candidates.

# Ranking

	collective:      TotalScore
	most_satisfied:  SatisfiedCount, then TotalScore

Remaining ties go to the lowest option ID.
*/
package scoring
