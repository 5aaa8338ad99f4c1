// Package batch drives the segmentation engine over line-delimited input:
// one input record per line in, one JSON array of segments per line out.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openkhmer/khseg/internal/metrics"
	"github.com/openkhmer/khseg/khmer"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// maxLineBytes bounds a single input record.
const maxLineBytes = 1024 * 1024

// Options configure a Run.
type Options struct {
	// Threads is the number of worker goroutines; 0 means runtime.NumCPU().
	Threads int
	// Limit stops after this many non-empty lines; 0 means no limit.
	Limit int
	// CollectUnknown records tokens the dictionary cannot vouch for,
	// retrievable afterwards via WriteUnknownReport.
	CollectUnknown bool
}

// Stats summarize a completed Run.
type Stats struct {
	Lines    int
	Segments int
}

// Runner segments batches of lines against a shared dictionary. Each
// worker goroutine gets its own Segmenter; the Runner itself may be used
// for several sequential runs.
type Runner struct {
	dict *khmer.Dictionary
	opts Options
	log  *slog.Logger

	mu       sync.Mutex
	unknowns map[string]int
}

// New returns a Runner over dict.
func New(dict *khmer.Dictionary, opts Options) *Runner {
	return &Runner{
		dict:     dict,
		opts:     opts,
		log:      slog.Default(),
		unknowns: make(map[string]int),
	}
}

// Run reads lines from in, segments them on a worker pool, and writes one
// JSON array of segment strings per input line to out, in input order.
// Blank lines are skipped; surrounding ASCII whitespace is trimmed.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	lines, err := r.readLines(in)
	if err != nil {
		return Stats{}, fmt.Errorf("reading input: %w", err)
	}
	r.log.Info("processing lines", "count", len(lines), "threads", r.workers())

	results := make([][]string, len(lines))
	jobs := make(chan int, len(lines))
	for i := range lines {
		jobs <- i
	}
	close(jobs)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < r.workers(); w++ {
		g.Go(func() error {
			seg := khmer.NewSegmenter(r.dict)
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				start := time.Now()
				segments := seg.Segment(lines[idx])
				results[idx] = segments
				metrics.LineDuration.Observe(time.Since(start).Seconds())
				metrics.LinesProcessed.Inc()
				metrics.SegmentsEmitted.Add(float64(len(segments)))
				r.recordUnknowns(segments)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	bw := bufio.NewWriterSize(out, 256*1024)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, segments := range results {
		if segments == nil {
			segments = []string{}
		}
		if err := enc.Encode(segments); err != nil {
			return Stats{}, fmt.Errorf("writing output: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return Stats{}, fmt.Errorf("flushing output: %w", err)
	}

	return Stats{
		Lines: len(lines),
		Segments: lo.SumBy(results, func(segments []string) int {
			return len(segments)
		}),
	}, nil
}

func (r *Runner) workers() int {
	if r.opts.Threads > 0 {
		return r.opts.Threads
	}
	return runtime.NumCPU()
}

func (r *Runner) readLines(in io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if r.opts.Limit > 0 && len(lines) >= r.opts.Limit {
			break
		}
	}
	return lines, scanner.Err()
}

func (r *Runner) recordUnknowns(segments []string) {
	if !r.opts.CollectUnknown {
		return
	}
	for _, seg := range segments {
		if seg == "" || r.dict.Contains(seg) {
			continue
		}
		first := []rune(seg)[0]
		if khmer.IsDigit(first) || khmer.IsSeparator(first) {
			continue
		}
		metrics.UnknownSegments.Inc()
		r.mu.Lock()
		r.unknowns[seg]++
		r.mu.Unlock()
	}
}

type unknownWord struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WriteUnknownReport writes the unknown tokens collected during Run as a
// JSON array sorted by count descending, then word ascending.
func (r *Runner) WriteUnknownReport(w io.Writer) error {
	r.mu.Lock()
	entries := lo.MapToSlice(r.unknowns, func(word string, count int) unknownWord {
		return unknownWord{Word: word, Count: count}
	})
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
