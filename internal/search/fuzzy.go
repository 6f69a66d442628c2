// Package search ranks indexed symbols against free-text queries.
package search

import (
	"unicode"
)

// Scoring constants for subsequence alignment.
// A match is worth scoreMatch; bonuses reward matches at word starts so that
// "fb" prefers find_by over buffer.
const (
	scoreMatch        = 16
	scoreGapStart     = -3
	scoreGapExtension = -1

	bonusBoundary = scoreMatch / 2
	bonusCamel    = bonusBoundary + scoreGapExtension
	// a consecutive match never earns less than it would cost to open and extend a gap
	bonusConsecutive         = -(scoreGapStart + scoreGapExtension)
	bonusFirstCharMultiplier = 2
)

type charClass int

const (
	charNonWord charClass = iota
	charLower
	charUpper
	charDigit
)

func classOf(r rune) charClass {
	switch {
	case unicode.IsLower(r):
		return charLower
	case unicode.IsUpper(r):
		return charUpper
	case unicode.IsDigit(r):
		return charDigit
	case unicode.IsLetter(r):
		return charLower
	default:
		return charNonWord
	}
}

// positionBonus is the bonus for matching a character of class cur that follows prev
func positionBonus(prev, cur charClass) int {
	switch {
	case prev == charNonWord && cur != charNonWord:
		return bonusBoundary
	case prev == charLower && cur == charUpper:
		return bonusCamel
	case prev != charDigit && cur == charDigit:
		return bonusCamel
	case cur == charNonWord:
		return bonusBoundary
	default:
		return 0
	}
}

// FuzzyScore aligns query as a subsequence of text and returns the best score with the
// rune indices of text that were matched. Matching is case-insensitive unless query
// contains an uppercase letter. ok is false when query is not a subsequence of text.
func FuzzyScore(text, query string) (score int, indices []int, ok bool) {
	pattern := []rune(query)
	runes := []rune(text)
	if len(pattern) == 0 || len(pattern) > len(runes) {
		return 0, nil, false
	}

	caseSensitive := false
	for _, r := range pattern {
		if unicode.IsUpper(r) {
			caseSensitive = true
			break
		}
	}
	fold := func(r rune) rune {
		if caseSensitive {
			return r
		}
		return unicode.ToLower(r)
	}
	for i := range pattern {
		pattern[i] = fold(pattern[i])
	}

	if !isSubsequence(runes, pattern, fold) {
		return 0, nil, false
	}

	n, m := len(runes), len(pattern)
	bonus := make([]int, n)
	prev := charNonWord
	for j, r := range runes {
		cur := classOf(r)
		bonus[j] = positionBonus(prev, cur)
		prev = cur
	}

	// cells[i][j] is the best alignment of pattern[:i+1] whose last rune sits on text[j]
	type cell struct {
		score      int
		valid      bool
		from       int
		chunkBonus int
	}
	cells := make([][]cell, m)
	for i := range cells {
		cells[i] = make([]cell, n)
	}

	for j := 0; j < n; j++ {
		if fold(runes[j]) != pattern[0] {
			continue
		}
		cells[0][j] = cell{
			score:      scoreMatch + bonus[j]*bonusFirstCharMultiplier,
			valid:      true,
			from:       -1,
			chunkBonus: bonus[j],
		}
	}

	for i := 1; i < m; i++ {
		for j := i; j < n; j++ {
			if fold(runes[j]) != pattern[i] {
				continue
			}
			best := cell{}
			for k := i - 1; k < j; k++ {
				left := cells[i-1][k]
				if !left.valid {
					continue
				}
				candidate := cell{valid: true, from: k}
				if k == j-1 {
					b := max(bonus[j], left.chunkBonus, bonusConsecutive)
					candidate.score = left.score + scoreMatch + b
					candidate.chunkBonus = max(left.chunkBonus, bonus[j])
				} else {
					gap := j - k - 1
					candidate.score = left.score + scoreMatch + bonus[j] + scoreGapStart + scoreGapExtension*(gap-1)
					candidate.chunkBonus = bonus[j]
				}
				if !best.valid || candidate.score > best.score {
					best = candidate
				}
			}
			cells[i][j] = best
		}
	}

	end := -1
	for j := m - 1; j < n; j++ {
		c := cells[m-1][j]
		if c.valid && (end < 0 || c.score > cells[m-1][end].score) {
			end = j
		}
	}
	if end < 0 {
		return 0, nil, false
	}

	indices = make([]int, m)
	for i, j := m-1, end; i >= 0; i-- {
		indices[i] = j
		j = cells[i][j].from
	}
	return cells[m-1][end].score, indices, true
}

func isSubsequence(text, pattern []rune, fold func(rune) rune) bool {
	i := 0
	for _, r := range text {
		if i < len(pattern) && fold(r) == pattern[i] {
			i++
		}
	}
	return i == len(pattern)
}
