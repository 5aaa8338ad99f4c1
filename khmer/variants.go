package khmer

import "strings"

// Orthographic variant generation. Real-world Khmer text spells some words
// with the visually identical subjoined ta/da swapped, or with coeng-ro
// typed on the wrong side of another subjoined consonant. Each dictionary
// entry is indexed under those alternate spellings as well, at the same
// cost as the base form.

const (
	coengTa = "្ត"
	coengDa = "្ឍ"
)

// generateVariants returns the alternate spellings of word, deduplicated
// and excluding word itself.
func generateVariants(word string) []string {
	variants := make(map[string]bool)

	// Subjoined ta <-> da, every occurrence rewritten in one pass.
	if strings.Contains(word, coengTa) {
		variants[strings.ReplaceAll(word, coengTa, coengDa)] = true
	}
	if strings.Contains(word, coengDa) {
		variants[strings.ReplaceAll(word, coengDa, coengTa)] = true
	}

	// Coeng-ro reordering applies to the base form and the ta/da outputs.
	bases := make([]string, 0, 1+len(variants))
	bases = append(bases, word)
	for v := range variants {
		bases = append(bases, v)
	}
	for _, b := range bases {
		if swapped := swapCoengRoOrder(b); swapped != b {
			variants[swapped] = true
		}
	}

	delete(variants, word)
	result := make([]string, 0, len(variants))
	for v := range variants {
		result = append(result, v)
	}
	return result
}

// swapCoengRoOrder rewrites (coeng, ro, coeng, X) windows to put coeng-ro
// after the other subjoined pair, and symmetrically (coeng, X, coeng, ro)
// to put it first. Returns word unchanged if no window matched.
func swapCoengRoOrder(word string) string {
	runes := []rune(word)
	n := len(runes)
	if n < 4 {
		return word
	}

	result := make([]rune, 0, n)
	changed := false

	for i := 0; i < n; {
		if i+3 < n && runes[i] == 0x17D2 && runes[i+2] == 0x17D2 {
			roFirst := runes[i+1] == 0x179A && runes[i+3] != 0x179A
			roSecond := runes[i+1] != 0x179A && runes[i+3] == 0x179A
			if roFirst || roSecond {
				result = append(result, runes[i+2], runes[i+3], runes[i], runes[i+1])
				i += 4
				changed = true
				continue
			}
		}
		result = append(result, runes[i])
		i++
	}

	if !changed {
		return word
	}
	return string(result)
}
