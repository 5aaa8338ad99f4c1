// khseg segments line-delimited Khmer text. Each input line produces one
// JSON array of segment strings on the output.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/openkhmer/khseg/internal/batch"
	"github.com/openkhmer/khseg/internal/logger"
	"github.com/openkhmer/khseg/khmer"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("khseg")
	var (
		dictPath      = fs.StringLong("dict", "data/khmer_words.txt", "newline-delimited word list")
		freqPath      = fs.StringLong("freq", "data/khmer_word_frequencies.json", "JSON word frequency table")
		inputPath     = fs.StringLong("input", "", "input text file, one record per line (required)")
		outputPath    = fs.StringLong("output", "", "output file (default stdout)")
		limit         = fs.Int64Long("limit", 0, "maximum lines to process (0 = unlimited)")
		threads       = fs.Int64Long("threads", 0, "worker goroutines (0 = all CPUs)")
		metricsAddr   = fs.StringLong("metrics-addr", "", "expose Prometheus metrics on this address")
		unknownReport = fs.StringLong("unknown-report", "", "write unknown tokens with counts to this file")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	if *inputPath == "" {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return errors.New("input is required")
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))
	}()

	startLoad := time.Now()
	dict := khmer.NewDictionary()
	dict.Load(*dictPath, *freqPath)
	log.Info("model loaded", "elapsed", time.Since(startLoad).Round(time.Millisecond))

	in, err := os.Open(*inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: *metricsAddr, Handler: mux}
			log.Info("starting metrics server", "addr", *metricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	runner := batch.New(dict, batch.Options{
		Threads:        int(*threads),
		Limit:          int(*limit),
		CollectUnknown: *unknownReport != "",
	})

	startRun := time.Now()
	stats, err := runner.Run(ctx, in, out)
	if err != nil {
		return err
	}
	elapsed := time.Since(startRun)
	log.Info("done",
		"lines", stats.Lines,
		"segments", stats.Segments,
		"elapsed", elapsed.Round(time.Millisecond),
		"lines_per_sec", fmt.Sprintf("%.0f", float64(stats.Lines)/elapsed.Seconds()))

	if *unknownReport != "" {
		f, err := os.Create(*unknownReport)
		if err != nil {
			return fmt.Errorf("creating unknown report: %w", err)
		}
		defer f.Close()
		if err := runner.WriteUnknownReport(f); err != nil {
			return fmt.Errorf("writing unknown report: %w", err)
		}
		log.Info("unknown report written", "path", *unknownReport)
	}

	return nil
}
