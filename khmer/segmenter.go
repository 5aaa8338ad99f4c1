package khmer

import (
	"log/slog"
	"math"
)

// Transition step costs. Dictionary matches use the word's unigram cost;
// number, separator and acronym steps are fixed costs; the repair and
// stray-single penalties are added on top of the dictionary's unknown cost.
const (
	numberStepCost     = 1.0
	separatorStepCost  = 0.1
	acronymStepCost    = 1.0
	repairPenalty      = 50.0
	straySinglePenalty = 10.0
)

// Segmenter finds the minimum-cost partition of a line of text under the
// dictionary's cost model. It keeps per-instance scratch buffers, so one
// Segmenter serves one goroutine; the Dictionary behind it can be shared.
type Segmenter struct {
	dict     *Dictionary
	cps      []rune
	dpCost   []float32
	dpParent []int
	scratch  []byte
	log      *slog.Logger
}

// NewSegmenter returns a segmenter over dict.
func NewSegmenter(dict *Dictionary) *Segmenter {
	const initialSize = 1024
	return &Segmenter{
		dict:     dict,
		cps:      make([]rune, 0, initialSize),
		dpCost:   make([]float32, initialSize),
		dpParent: make([]int, initialSize),
		log:      slog.Default(),
	}
}

// Segment splits text into word-like tokens. Zero-width spaces are
// stripped first; the concatenation of the returned segments equals the
// stripped input. An empty (post-strip) input yields an empty list.
func (s *Segmenter) Segment(text string) []string {
	text = stripZWSP(text)
	s.cps = decodeRunes(text, s.cps)
	cps := s.cps
	n := len(cps)
	if n == 0 {
		return []string{}
	}

	if len(s.dpCost) < n+1 {
		s.dpCost = make([]float32, n+1)
		s.dpParent = make([]int, n+1)
	}
	dpCost := s.dpCost[:n+1]
	dpParent := s.dpParent[:n+1]
	inf := float32(math.Inf(1))
	for i := range dpCost {
		dpCost[i] = inf
		dpParent[i] = -1
	}
	dpCost[0] = 0

	dict := s.dict
	maxWordLen := dict.MaxWordLength()
	unknownCost := dict.UnknownCost()

	relax := func(from, to int, cost float32) {
		if to <= n && cost < dpCost[to] {
			dpCost[to] = cost
			dpParent[to] = from
		}
	}

	for i := 0; i < n; i++ {
		if dpCost[i] == inf {
			continue
		}
		base := dpCost[i]
		c := cps[i]

		// Repair mode: a position right after a coeng, or on a dependent
		// vowel, cannot legally start a segment. The only way forward is a
		// heavily penalized single step.
		if (i > 0 && IsCoeng(cps[i-1])) || IsDependentVowel(c) {
			relax(i, i+1, base+unknownCost+repairPenalty)
			continue
		}

		// Number grouping. A currency symbol followed by a digit also takes
		// this branch (skipping the separator step), but numberLength is 0
		// there, so the symbol forms no group and falls to the unknown step.
		startsNumber := IsDigit(c) ||
			(IsCurrencySymbol(c) && i+1 < n && IsDigit(cps[i+1]))
		if startsNumber {
			relax(i, i+numberLength(cps, i), base+numberStepCost)
		} else if IsSeparator(c) {
			relax(i, i+1, base+separatorStepCost)
		}

		// Acronym grouping: cluster-dot pairs like ស.រ.អ.
		if isAcronymStart(cps, i) {
			relax(i, i+acronymLength(cps, i), base+acronymStepCost)
		}

		// Dictionary matches of every length.
		limit := i + maxWordLen
		if limit > n {
			limit = n
		}
		for j := i + 1; j <= limit; j++ {
			if cost, ok := dict.LookupRange(cps, i, j); ok {
				relax(i, j, base+cost)
			}
		}

		// Unknown fallback: a whole orthographic cluster for Khmer text,
		// a single code point otherwise.
		if IsKhmerChar(c) {
			clusterLen := khmerClusterLength(cps, i)
			step := unknownCost
			if clusterLen == 1 && !IsValidSingleWord(c) {
				step += straySinglePenalty
			}
			relax(i, i+clusterLen, base+step)
		} else {
			relax(i, i+1, base+unknownCost)
		}
	}

	segments := make([]string, 0, n/4)
	for cur := n; cur > 0; {
		prev := dpParent[cur]
		if prev < 0 {
			s.log.Warn("segmentation could not cover input, returning partial result",
				"stuck_index", cur, "length", n)
			break
		}
		var seg string
		seg, s.scratch = encodeRange(cps, prev, cur, s.scratch)
		segments = append(segments, seg)
		cur = prev
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	segments = snapStrayConsonants(segments, dict)
	segments = mergeSignClusters(segments, dict)
	return coalesceUnknownRuns(segments, dict)
}

// khmerClusterLength returns the length of the orthographic cluster
// starting at i: a base consonant or independent vowel followed by any
// number of (coeng, consonant) pairs, dependent vowels, and signs.
// Anything that cannot open a cluster has length 1.
func khmerClusterLength(cps []rune, i int) int {
	n := len(cps)
	if i >= n {
		return 0
	}
	if cps[i] < 0x1780 || cps[i] > 0x17B3 {
		return 1
	}
	j := i + 1
	for j < n {
		c := cps[j]
		if IsCoeng(c) {
			if j+1 < n && IsConsonant(cps[j+1]) {
				j += 2
				continue
			}
			break
		}
		if IsDependentVowel(c) || IsSign(c) {
			j++
			continue
		}
		break
	}
	return j - i
}

// numberLength consumes digits plus grouping characters (comma, dot,
// space) that sit between digits. Returns 0 when i is not a digit.
func numberLength(cps []rune, i int) int {
	n := len(cps)
	if !IsDigit(cps[i]) {
		return 0
	}
	j := i + 1
	for j < n {
		c := cps[j]
		if IsDigit(c) {
			j++
			continue
		}
		if (c == ',' || c == '.' || c == ' ') && j+1 < n && IsDigit(cps[j+1]) {
			j += 2
			continue
		}
		break
	}
	return j - i
}

// isAcronymStart reports whether the cluster at i is immediately followed
// by a dot.
func isAcronymStart(cps []rune, i int) bool {
	clusterLen := khmerClusterLength(cps, i)
	if clusterLen == 0 {
		return false
	}
	dot := i + clusterLen
	return dot < len(cps) && cps[dot] == '.'
}

// acronymLength consumes cluster-dot pairs for as long as each cluster is
// followed by a dot.
func acronymLength(cps []rune, i int) int {
	n := len(cps)
	j := i
	for {
		clusterLen := khmerClusterLength(cps, j)
		if clusterLen == 0 {
			break
		}
		dot := j + clusterLen
		if dot >= n || cps[dot] != '.' {
			break
		}
		j = dot + 1
		if j >= n {
			break
		}
	}
	return j - i
}
