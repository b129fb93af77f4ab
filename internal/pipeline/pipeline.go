// Package pipeline drives a whole playlist through parse, filter, classify and
// materialize, reporting progress to the caller as it goes.
package pipeline

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/Advansoftware/m3utostrm/internal/playlist"
	"github.com/Advansoftware/m3utostrm/internal/strm"
)

// ProgressFunc receives each classified item together with the zero-based count
// of items processed so far and the total number of eligible items.
type ProgressFunc func(item playlist.Classified, processed, total int)

// Options configures one playlist run.
type Options struct {
	Source        string
	UseFile       bool
	MoviesDir     string
	SeriesDir     string
	ProcessMovies bool
	ProcessSeries bool
	Progress      ProgressFunc
}

// Orchestrator runs playlist processing on a worker goroutine and supports
// cooperative cancellation between entries.
type Orchestrator struct {
	cancelled atomic.Bool
	running   atomic.Bool
}

func New() *Orchestrator {
	return &Orchestrator{}
}

// Cancel requests the current run to stop at the next entry boundary. Files
// already written stay in place.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
}

// Running reports whether a playlist walk is in flight.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Run processes the whole playlist. Failure to obtain the source aborts with
// no side effects; a per-entry materialization failure is logged and the walk
// continues.
func (o *Orchestrator) Run(opts Options) error {
	if !o.running.CompareAndSwap(false, true) {
		return fmt.Errorf("playlist processing already running")
	}
	defer o.running.Store(false)
	o.cancelled.Store(false)

	lines, err := playlist.Load(opts.Source, opts.UseFile)
	if err != nil {
		return err
	}
	total := playlist.CountEligible(lines)
	log.Info().Str("op", "pipeline/run").Msgf("Processing %d eligible playlist entries", total)

	processed := 0
	for i := 0; i < len(lines); i++ {
		if o.cancelled.Load() {
			log.Info().Str("op", "pipeline/run").Msgf("Cancelled after %d of %d entries", processed, total)
			return nil
		}
		if !playlist.IsEntryLine(lines[i]) {
			continue
		}
		if playlist.Excluded(lines[i]) {
			i++
			continue
		}
		url := ""
		if i+1 < len(lines) {
			url = lines[i+1]
		}
		item := playlist.Classify(playlist.ParseEntry(lines[i], url))
		if opts.Progress != nil {
			opts.Progress(item, processed, total)
		}
		processed++
		o.materialize(item, opts)
		i++
	}
	log.Info().Str("op", "pipeline/run").Msgf("Finished playlist run, %d entries processed", processed)
	return nil
}

func (o *Orchestrator) materialize(item playlist.Classified, opts Options) {
	var err error
	switch {
	case item.IsSeries && opts.ProcessSeries:
		_, err = strm.Write(item, opts.SeriesDir)
	case !item.IsSeries && opts.ProcessMovies:
		_, err = strm.Write(item, opts.MoviesDir)
	default:
		return
	}
	if err != nil {
		log.Warn().Str("op", "pipeline/run").Msgf("Skipping %q: %v", item.Title, err)
	}
}
