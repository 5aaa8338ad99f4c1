package khmer

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"strings"
)

// freqFloor is the minimum effective count for any word in the frequency
// table. Costs are unigram: cost = -log10(count / total).
const freqFloor = 5.0

const (
	repetitionMark = "ៗ"
	coengMark      = "្"
	qaVowel        = "ឬ"
)

// Dictionary holds the accepted word set, per-word costs, and the prefix
// index. It is immutable after Load and safe to share across goroutines.
type Dictionary struct {
	words       map[string]bool
	costs       map[string]float32
	maxWordLen  int
	defaultCost float32
	unknownCost float32
	root        *trieNode
	log         *slog.Logger
}

// NewDictionary returns an empty dictionary with fallback costs. An empty
// dictionary is usable: segmentation degrades to cluster/unknown costs.
func NewDictionary() *Dictionary {
	return &Dictionary{
		words:       make(map[string]bool),
		costs:       make(map[string]float32),
		defaultCost: 10.0,
		unknownCost: 20.0,
		root:        &trieNode{},
		log:         slog.Default(),
	}
}

// Load reads the word list and frequency table and builds the prefix
// index. Missing or unreadable files are logged and leave the dictionary
// in a degraded but usable state; they never fail the process.
func (d *Dictionary) Load(wordPath, freqPath string) {
	d.loadWords(wordPath)
	d.loadFrequencies(freqPath)
	for word := range d.words {
		d.root.insert(word, d.WordCost(word))
	}
	d.log.Info("dictionary ready",
		"words", len(d.words),
		"max_word_length", d.maxWordLen,
		"default_cost", d.defaultCost,
		"unknown_cost", d.unknownCost)
}

func (d *Dictionary) loadWords(path string) {
	file, err := os.Open(path)
	if err != nil {
		d.log.Warn("word list unavailable, segmenting without dictionary", "path", path, "error", err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		runes := []rune(word)
		if len(runes) == 1 && !IsValidSingleWord(runes[0]) {
			continue
		}
		d.words[word] = true
		for _, v := range generateVariants(word) {
			d.words[v] = true
		}
	}
	if err := scanner.Err(); err != nil {
		d.log.Warn("word list read aborted", "path", path, "error", err)
	}

	d.filterWords()

	d.maxWordLen = 0
	for word := range d.words {
		if n := len([]rune(word)); n > d.maxWordLen {
			d.maxWordLen = n
		}
	}
	d.log.Info("word list loaded", "path", path, "words", len(d.words))
}

// filterWords drops entries that can never be legitimate tokens: anything
// containing the repetition mark, anything starting with a bare coeng, and
// compounds glued together with the independent vowel ryy (U+17AC) whose
// parts are already entries themselves.
func (d *Dictionary) filterWords() {
	toRemove := make([]string, 0)
	for word := range d.words {
		if strings.Contains(word, repetitionMark) {
			toRemove = append(toRemove, word)
			continue
		}
		if strings.HasPrefix(word, coengMark) {
			toRemove = append(toRemove, word)
			continue
		}
		if strings.Contains(word, qaVowel) && len([]rune(word)) > 1 {
			if d.qaDecomposable(word) {
				toRemove = append(toRemove, word)
			}
		}
	}
	for _, word := range toRemove {
		delete(d.words, word)
	}
	delete(d.words, repetitionMark)
}

// qaDecomposable reports whether every non-empty part of word split on
// U+17AC is itself a known entry. Empty parts (a leading or trailing
// U+17AC) count as known.
func (d *Dictionary) qaDecomposable(word string) bool {
	for _, part := range strings.Split(word, qaVowel) {
		if part != "" && !d.words[part] {
			return false
		}
	}
	return true
}

func (d *Dictionary) loadFrequencies(path string) {
	file, err := os.Open(path)
	if err != nil {
		d.log.Warn("frequency table unavailable, using default costs", "path", path, "error", err)
		return
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber()
	var data map[string]any
	if err := decoder.Decode(&data); err != nil {
		d.log.Warn("frequency table unreadable, using default costs", "path", path, "error", err)
		return
	}

	effective := make(map[string]float64, len(data))
	var total float64
	skipped := 0

	for word, raw := range data {
		num, ok := raw.(json.Number)
		if !ok {
			skipped++
			continue
		}
		count, err := num.Float64()
		if err != nil {
			skipped++
			continue
		}
		eff := math.Max(count, freqFloor)
		effective[word] = eff
		for _, v := range generateVariants(word) {
			if _, seen := effective[v]; !seen {
				effective[v] = eff
			}
		}
		total += eff
	}
	if skipped > 0 {
		d.log.Warn("skipped malformed frequency entries", "path", path, "skipped", skipped)
	}

	if total > 0 {
		d.defaultCost = float32(-math.Log10(freqFloor / total))
		d.unknownCost = d.defaultCost + 5.0
		for word, eff := range effective {
			if d.words[word] {
				d.costs[word] = float32(-math.Log10(eff / total))
			}
		}
	}

	d.log.Info("frequency table loaded", "path", path, "entries", len(effective))
}

// MaxWordLength is the longest accepted word, in code points.
func (d *Dictionary) MaxWordLength() int { return d.maxWordLen }

// DefaultCost is the cost of accepted words without an explicit frequency.
func (d *Dictionary) DefaultCost() float32 { return d.defaultCost }

// UnknownCost is the per-step penalty for text no dictionary path explains.
func (d *Dictionary) UnknownCost() float32 { return d.unknownCost }

// Contains reports whether word is an accepted entry.
func (d *Dictionary) Contains(word string) bool { return d.words[word] }

// WordCost returns the unigram cost of word: its frequency-derived cost if
// known, the default cost for accepted words without one, and the unknown
// cost otherwise.
func (d *Dictionary) WordCost(word string) float32 {
	if cost, ok := d.costs[word]; ok {
		return cost
	}
	if d.words[word] {
		return d.defaultCost
	}
	return d.unknownCost
}

// LookupRange looks up cps[start:end) in the prefix index.
func (d *Dictionary) LookupRange(cps []rune, start, end int) (float32, bool) {
	return d.root.lookupRange(cps, start, end)
}
