// Package textdiff provides string similarity scoring and word-level diffs
// for comparing dialogue lines across documents.
package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// matchBlock is a run of identical runes starting at a[A] and b[B].
type matchBlock struct {
	A, B, Size int
}

// Ratio returns a similarity measure in [0, 1] between two strings, computed
// as 2*M/T where M is the total size of the longest matching blocks and T is
// the combined rune length. Two empty strings are fully similar.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matched := 0
	for _, m := range matchingBlocks(ra, rb) {
		matched += m.Size
	}
	return 2.0 * float64(matched) / float64(total)
}

// matchingBlocks finds all maximal non-overlapping matching runs by
// recursively splitting around the longest match.
func matchingBlocks(a, b []rune) []matchBlock {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type region struct {
		alo, ahi, blo, bhi int
	}

	stack := []region{{0, len(a), 0, len(b)}}
	var blocks []matchBlock

	for len(stack) > 0 {
		reg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		m := longestMatch(a, b2j, reg.alo, reg.ahi, reg.blo, reg.bhi)
		if m.Size == 0 {
			continue
		}
		blocks = append(blocks, m)

		if reg.alo < m.A && reg.blo < m.B {
			stack = append(stack, region{reg.alo, m.A, reg.blo, m.B})
		}
		if m.A+m.Size < reg.ahi && m.B+m.Size < reg.bhi {
			stack = append(stack, region{m.A + m.Size, reg.ahi, m.B + m.Size, reg.bhi})
		}
	}

	return blocks
}

// longestMatch finds the longest run of runes common to a[alo:ahi] and
// b[blo:bhi], preferring the earliest position on ties.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) matchBlock {
	best := matchBlock{A: alo, B: blo}
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.Size {
				best = matchBlock{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		j2len = next
	}

	return best
}

// WordDifferences returns the words present in text2 but not in text1, in
// order of appearance. Equal inputs yield nil. The function never fails; any
// internal fault yields nil instead of propagating.
func WordDifferences(text1, text2 string) (added []string) {
	if text1 == text2 {
		return nil
	}

	defer func() {
		if recover() != nil {
			added = nil
		}
	}()

	// Diff at word granularity by mapping each word to a rune token.
	w1 := strings.Join(strings.Fields(text1), "\n")
	w2 := strings.Join(strings.Fields(text2), "\n")

	dmp := diffmatchpatch.New()
	t1, t2, words := dmp.DiffLinesToRunes(w1, w2)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(t1, t2, false), words)

	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffInsert {
			continue
		}
		for _, w := range strings.Split(d.Text, "\n") {
			if w != "" {
				added = append(added, w)
			}
		}
	}

	return added
}
