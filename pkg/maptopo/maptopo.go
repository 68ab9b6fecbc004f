package maptopo

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beetlebugorg/maptopo/internal/geojsonfile"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/metrics"
	"github.com/beetlebugorg/maptopo/internal/postgis"
	"github.com/beetlebugorg/maptopo/internal/stage"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dataset is the working set of a run.
type Dataset = store.Dataset

// Result is the outcome of one stage.
type Result = stage.Result

// Source fills a dataset before the stages run.
type Source interface {
	Load(ctx context.Context, ds *Dataset) error
}

// Sink persists a dataset after every stage succeeded.
type Sink interface {
	Commit(ctx context.Context, ds *Dataset) error
}

// GeoJSONDir is a directory of GeoJSON partition files. It is both a
// Source and a Sink.
type GeoJSONDir = geojsonfile.Dir

// OpenGeoJSON returns the dataset directory at path.
func OpenGeoJSON(path string, log logrus.FieldLogger) *GeoJSONDir {
	return geojsonfile.New(path, log)
}

// PostGIS is a database holding the dataset tables. It is both a Source
// and a Sink.
type PostGIS = postgis.DB

// OpenPostGIS connects to a PostGIS database, retrying up to retries times.
func OpenPostGIS(ctx context.Context, url string, retries uint64, log logrus.FieldLogger) (*PostGIS, error) {
	return postgis.Connect(ctx, url, retries, log)
}

// Summary reports what a run did.
type Summary struct {
	RunID   string
	Results []Result
	// Changes counts the committed changes by kind ("insert", "modify",
	// "delete").
	Changes map[string]int
	Elapsed time.Duration
}

// Unresolved returns the number of features left unresolved by all stages.
func (s Summary) Unresolved() int {
	n := 0
	for _, r := range s.Results {
		n += r.Unresolved
	}
	return n
}

// Report writes one line per stage and a line of change totals.
func (s Summary) Report(w io.Writer) error {
	for _, r := range s.Results {
		parts := []string{fmt.Sprintf("%-10s", r.Stage)}
		for _, ev := range r.Events() {
			parts = append(parts, fmt.Sprintf("%s=%d", ev, r.Counters[ev]))
		}
		parts = append(parts, fmt.Sprintf("unresolved=%d", r.Unresolved))
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "changes    insert=%d modify=%d delete=%d (%s)\n",
		s.Changes["insert"], s.Changes["modify"], s.Changes["delete"], s.Elapsed.Round(time.Millisecond))
	return err
}

// Run loads a dataset from src, runs the selected stages and commits the
// result to sink. Nothing is committed when a stage fails or ctx is
// cancelled. A nil sink runs without committing.
func Run(ctx context.Context, src Source, sink Sink, opts Options) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString(), Changes: make(map[string]int)}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"run": summary.RunID, "dataset": opts.Prefix})

	engine := geometry.NewGEOS()
	ds := store.NewDataset(opts.Prefix, engine, opts.SequenceStart)
	if err := src.Load(ctx, ds); err != nil {
		return summary, fmt.Errorf("load dataset %s: %w", opts.Prefix, err)
	}

	p := opts.pipeline()
	log.WithField("stages", p.Stages()).Info("run started")
	results, err := p.Run(ctx, &stage.Env{Data: ds, Engine: engine, Log: log})
	summary.Results = results
	if err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	for _, part := range []*store.MemStore{ds.Lines, ds.Points, ds.Polygons} {
		for _, c := range part.Changes() {
			summary.Changes[c.Instruction.String()]++
		}
	}
	if sink != nil && !opts.DryRun {
		if err := sink.Commit(ctx, ds); err != nil {
			return summary, fmt.Errorf("commit dataset %s: %w", opts.Prefix, err)
		}
	}
	summary.Elapsed = time.Since(start)

	if opts.MetricsFile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(results, summary.Elapsed)
		if err := rec.WriteToTextfile(opts.MetricsFile); err != nil {
			log.WithError(err).Warn("writing metrics failed")
		}
	}
	log.WithFields(logrus.Fields{
		"unresolved": summary.Unresolved(),
		"elapsed":    summary.Elapsed,
	}).Info("run done")
	return summary, nil
}
