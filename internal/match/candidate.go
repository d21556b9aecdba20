package match

import (
	"sort"
)

// Candidate is a located occurrence of a needle in a haystack.
type Candidate struct {
	// Start and End delimit the half-open rune range in the original text.
	Start int
	End   int

	// Score is the 0-100 similarity between the normalized window and the
	// normalized needle. Exact matches score 100.
	Score float64

	// Query is the normalized needle that produced this candidate.
	Query string
}

// Len returns the number of runes covered.
func (c Candidate) Len() int { return c.End - c.Start }

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then earliest start, then shortest span.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	if c[i].Start != c[j].Start {
		return c[i].Start < c[j].Start
	}

	return c[i].Len() < c[j].Len()
}

// Rank sorts the list in place and returns it.
func (c CandidateList) Rank() CandidateList {
	sort.Stable(c)
	return c
}

// Best returns the best candidate, or nil if no candidates.
// The list must already be ranked.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}
	return &c[0]
}

// Top returns the top n candidates, or all of them when n <= 0.
func (c CandidateList) Top(n int) CandidateList {
	if n <= 0 || n >= len(c) {
		return c
	}
	return c[:n]
}

// AboveThreshold returns candidates with score at or above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}
	return result
}

// RunnerUp returns the best candidate not overlapping the best one, or nil.
// The list must already be ranked.
func (c CandidateList) RunnerUp() *Candidate {
	best := c.Best()
	if best == nil {
		return nil
	}

	for i := range c[1:] {
		o := &c[i+1]
		if o.End <= best.Start || o.Start >= best.End {
			return o
		}
	}

	return nil
}

// IsAmbiguous returns true if the runner-up, a candidate elsewhere in the
// text, scores within the given gap of the best one.
func (c CandidateList) IsAmbiguous(gap float64) bool {
	best, runner := c.Best(), c.RunnerUp()
	if best == nil || runner == nil {
		return false
	}
	return best.Score-runner.Score < gap
}
