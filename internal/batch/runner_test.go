package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openkhmer/khseg/khmer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDictionary(t *testing.T) *khmer.Dictionary {
	t.Helper()
	dir := t.TempDir()
	wordPath := filepath.Join(dir, "words.txt")
	freqPath := filepath.Join(dir, "freq.json")
	words := "សួស្តី\nបង\nការ\nខ្ញុំ\nស្រលាញ់\nកម្ពុជា\n"
	freq := `{"សួស្តី":120,"ខ្ញុំ":500,"ស្រលាញ់":80,"កម្ពុជា":300,"បង":200,"ការ":400}`
	require.NoError(t, os.WriteFile(wordPath, []byte(words), 0o644))
	require.NoError(t, os.WriteFile(freqPath, []byte(freq), 0o644))

	d := khmer.NewDictionary()
	d.Load(wordPath, freqPath)
	return d
}

func decodeLines(t *testing.T, out string) [][]string {
	t.Helper()
	var results [][]string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var segments []string
		require.NoError(t, json.Unmarshal([]byte(line), &segments))
		results = append(results, segments)
	}
	return results
}

func TestRunSegmentsLinesInOrder(t *testing.T) {
	r := New(newTestDictionary(t), Options{Threads: 2})

	input := "សួស្តី បង\n\nខ្ញុំស្រលាញ់កម្ពុជា\n"
	var out bytes.Buffer
	stats, err := r.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Lines)
	assert.Equal(t, 6, stats.Segments)
	assert.Equal(t, [][]string{
		{"សួស្តី", " ", "បង"},
		{"ខ្ញុំ", "ស្រលាញ់", "កម្ពុជា"},
	}, decodeLines(t, out.String()))
}

func TestRunRespectsLimit(t *testing.T) {
	r := New(newTestDictionary(t), Options{Limit: 1})

	input := "សួស្តី\nបង\nការ\n"
	var out bytes.Buffer
	stats, err := r.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Lines)
	assert.Equal(t, [][]string{{"សួស្តី"}}, decodeLines(t, out.String()))
}

func TestRunEmptyInput(t *testing.T) {
	r := New(newTestDictionary(t), Options{})

	var out bytes.Buffer
	stats, err := r.Run(context.Background(), strings.NewReader(""), &out)
	require.NoError(t, err)

	assert.Zero(t, stats.Lines)
	assert.Empty(t, out.String())
}

func TestRunCanceledContext(t *testing.T) {
	r := New(newTestDictionary(t), Options{Threads: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err := r.Run(ctx, strings.NewReader("សួស្តី\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnknownReport(t *testing.T) {
	r := New(newTestDictionary(t), Options{CollectUnknown: true})

	input := "ការឃការ\nការឃការ\nxyz\n"
	var out bytes.Buffer
	_, err := r.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	var report bytes.Buffer
	require.NoError(t, r.WriteUnknownReport(&report))

	var entries []struct {
		Word  string `json:"word"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(report.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "ការឃ", entries[0].Word)
	assert.Equal(t, 2, entries[0].Count)
	assert.Equal(t, "xyz", entries[1].Word)
	assert.Equal(t, 1, entries[1].Count)
}
