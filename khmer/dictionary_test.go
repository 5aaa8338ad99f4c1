package khmer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDictFiles(t testing.TB, words []string, freqJSON string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	wordPath := filepath.Join(dir, "words.txt")
	freqPath := filepath.Join(dir, "freq.json")
	require.NoError(t, os.WriteFile(wordPath, []byte(strings.Join(words, "\n")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(freqPath, []byte(freqJSON), 0o644))
	return wordPath, freqPath
}

func TestLoadFiltersEntries(t *testing.T) {
	wordPath, freqPath := writeDictFiles(t, []string{
		"សួស្តី",
		"ការ",
		"បង",
		"ខ្ញុំ",
		"ស្រលាញ់",
		"កម្ពុជា",
		"ឃ",      // single consonant outside the allow-list
		"ក",      // single consonant inside the allow-list
		"កៗក",    // repetition mark
		"្ក",     // leading coeng
		"ការឬបង", // decomposes into known parts around U+17AC
		"ឬការ",   // leading U+17AC: empty part counts as known
		"ការឬឃឃ", // second part unknown, stays
	}, `{}`)

	d := NewDictionary()
	d.Load(wordPath, freqPath)

	assert.True(t, d.Contains("សួស្តី"))
	assert.True(t, d.Contains("ក"))
	assert.True(t, d.Contains("ការឬឃឃ"))
	assert.False(t, d.Contains("ឃ"))
	assert.False(t, d.Contains("កៗក"))
	assert.False(t, d.Contains("្ក"))
	assert.False(t, d.Contains("ការឬបង"))
	assert.False(t, d.Contains("ឬការ"))
	assert.Equal(t, 7, d.MaxWordLength())
}

func TestLoadComputesUnigramCosts(t *testing.T) {
	wordPath, freqPath := writeDictFiles(t,
		[]string{"សួស្តី", "ការ", "បង", "ខ្ញុំ", "ស្រលាញ់", "កម្ពុជា", "ក"},
		`{"សួស្តី":120,"ខ្ញុំ":500,"ស្រលាញ់":80,"កម្ពុជា":300,"បង":200,"ការ":400}`)

	d := NewDictionary()
	d.Load(wordPath, freqPath)

	// total clamped count is 1600
	assert.InDelta(t, 2.505150, d.DefaultCost(), 1e-4)
	assert.InDelta(t, 7.505150, d.UnknownCost(), 1e-4)
	assert.InDelta(t, 0.505150, d.WordCost("ខ្ញុំ"), 1e-4)
	// accepted word without a frequency falls back to the default cost
	assert.InDelta(t, float64(d.DefaultCost()), float64(d.WordCost("ក")), 1e-6)
	// unaccepted word costs unknown
	assert.InDelta(t, float64(d.UnknownCost()), float64(d.WordCost("zzz")), 1e-6)
}

func TestVariantSharesCost(t *testing.T) {
	wordPath, freqPath := writeDictFiles(t,
		[]string{"សួស្តី"},
		`{"សួស្តី":120}`)

	d := NewDictionary()
	d.Load(wordPath, freqPath)

	// the ta/da variant is accepted at the same cost as the base form
	require.True(t, d.Contains("សួស្ឍី"))
	assert.InDelta(t, float64(d.WordCost("សួស្តី")), float64(d.WordCost("សួស្ឍី")), 1e-6)
}

func TestLoadSkipsMalformedFreqEntries(t *testing.T) {
	wordPath, freqPath := writeDictFiles(t,
		[]string{"ការ", "បង"},
		`{"ការ":400,"បង":"not-a-number"}`)

	d := NewDictionary()
	d.Load(wordPath, freqPath)

	// only the valid entry contributes: total 400
	assert.InDelta(t, 1.903090, d.DefaultCost(), 1e-4) // -log10(5/400)
	assert.InDelta(t, float64(d.DefaultCost()), float64(d.WordCost("បង")), 1e-6)
}

func TestLoadMissingFilesDegrades(t *testing.T) {
	d := NewDictionary()
	d.Load("/nonexistent/words.txt", "/nonexistent/freq.json")

	assert.Equal(t, 0, d.MaxWordLength())
	assert.InDelta(t, 10.0, d.DefaultCost(), 1e-6)
	assert.InDelta(t, 20.0, d.UnknownCost(), 1e-6)

	// an empty dictionary still segments via cluster fallbacks
	seg := NewSegmenter(d)
	assert.Equal(t, []string{"សួស្តី"}, seg.Segment("សួស្តី"))
	assert.Equal(t, []string{"កា", "រ"}, seg.Segment("ការ"))
}

func TestLoadMalformedFreqFileDegrades(t *testing.T) {
	wordPath, freqPath := writeDictFiles(t, []string{"ការ"}, `{not json`)

	d := NewDictionary()
	d.Load(wordPath, freqPath)

	assert.True(t, d.Contains("ការ"))
	assert.InDelta(t, 10.0, d.DefaultCost(), 1e-6)
	assert.InDelta(t, 20.0, d.UnknownCost(), 1e-6)
}

func TestLookupRange(t *testing.T) {
	wordPath, freqPath := writeDictFiles(t, []string{"សួស្តី", "ការ"}, `{}`)

	d := NewDictionary()
	d.Load(wordPath, freqPath)

	cps := []rune("សួស្តីការ")
	cost, ok := d.LookupRange(cps, 0, 6)
	require.True(t, ok)
	assert.InDelta(t, float64(d.DefaultCost()), float64(cost), 1e-6)

	_, ok = d.LookupRange(cps, 0, 3) // prefix of a word, not a word
	assert.False(t, ok)

	_, ok = d.LookupRange(cps, 1, 6)
	assert.False(t, ok)

	cost, ok = d.LookupRange(cps, 6, 9)
	require.True(t, ok)
	assert.InDelta(t, float64(d.DefaultCost()), float64(cost), 1e-6)
}
