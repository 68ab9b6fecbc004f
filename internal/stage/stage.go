// Package stage sequences the topology algorithms for each map feature
// class. A Pipeline runs the stages in a fixed order against one dataset;
// each stage finishes all its mutations before the next one starts.
package stage

import (
	"context"
	"fmt"
	"sort"

	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/sirupsen/logrus"
)

// Name identifies a stage.
type Name string

const (
	Coast      Name = "coast"
	Elevation  Name = "elevation"
	Lakes      Name = "lakes"
	Rivers     Name = "rivers"
	Roads      Name = "roads"
	Vegetation Name = "vegetation"
)

// Order is the order stages always run in.
var Order = []Name{Coast, Elevation, Lakes, Rivers, Roads, Vegetation}

// ParseName returns the stage called s.
func ParseName(s string) (Name, error) {
	for _, n := range Order {
		if string(n) == s {
			return n, nil
		}
	}
	return "", &ErrUnknownStage{Name: s}
}

// ErrUnknownStage indicates a stage name that is not in Order.
type ErrUnknownStage struct {
	Name string
}

func (e *ErrUnknownStage) Error() string {
	return fmt.Sprintf("unknown stage %q", e.Name)
}

// Env is what a stage works on.
type Env struct {
	Data   *store.Dataset
	Engine geometry.Engine
	Log    logrus.FieldLogger
}

// Stage resolves one feature class.
type Stage interface {
	Name() Name
	Run(ctx context.Context, env *Env) (Result, error)
}

// Result is the diagnostic outcome of a stage.
type Result struct {
	Stage Name
	// Unresolved counts features of the stage's class still pending.
	Unresolved int
	// Counters holds named event counts such as "pruned" or "merged".
	Counters map[string]int
}

func newResult(name Name) Result {
	return Result{Stage: name, Counters: make(map[string]int)}
}

// Events returns the counter names in sorted order.
func (r Result) Events() []string {
	names := make([]string, 0, len(r.Counters))
	for k := range r.Counters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Pipeline runs stages in Order.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns a pipeline over stages, reordered to follow Order.
// Stages with names outside Order run last in the order given.
func NewPipeline(stages ...Stage) *Pipeline {
	rank := make(map[Name]int, len(Order))
	for i, n := range Order {
		rank[n] = i
	}
	sorted := append([]Stage(nil), stages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, ok := rank[sorted[i].Name()]
		if !ok {
			ri = len(Order)
		}
		rj, ok := rank[sorted[j].Name()]
		if !ok {
			rj = len(Order)
		}
		return ri < rj
	})
	return &Pipeline{stages: sorted}
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []Name {
	names := make([]Name, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage. The first error aborts the pipeline.
func (p *Pipeline) Run(ctx context.Context, env *Env) ([]Result, error) {
	results := make([]Result, 0, len(p.stages))
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		log := env.Log.WithField("stage", string(s.Name()))
		stageEnv := &Env{Data: env.Data, Engine: env.Engine, Log: log}

		res, err := s.Run(ctx, stageEnv)
		if err != nil {
			return results, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		fields := logrus.Fields{"unresolved": res.Unresolved}
		for _, k := range res.Events() {
			fields[k] = res.Counters[k]
		}
		log.WithFields(fields).Info("stage done")
		results = append(results, res)
	}
	return results, nil
}
