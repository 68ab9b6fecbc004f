package topology

import (
	"testing"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type env struct {
	lines  *store.MemStore
	points *store.MemStore
	engine geometry.Engine
	log    *logrus.Logger
	hook   *test.Hook
}

func newEnv(t *testing.T) *env {
	t.Helper()
	engine := geometry.NewGEOS()
	seq := store.NewSequence(100000)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &env{
		lines:  store.NewMemStore(feature.Lines, engine, seq),
		points: store.NewMemStore(feature.Points, engine, seq),
		engine: engine,
		log:    log,
		hook:   hook,
	}
}

func (e *env) line(raw string, g orb.Geometry) int64 {
	return e.lines.Insert(feature.Feature{Type: feature.MustParseType(raw), Geometry: g})
}

func (e *env) wkt(t *testing.T, name, raw, wkt string) int64 {
	t.Helper()
	g, err := geometry.DecodeWKT(wkt)
	require.NoError(t, err)
	return e.lines.Insert(feature.Feature{Name: name, Type: feature.MustParseType(raw), Geometry: g})
}

func (e *env) get(t *testing.T, id int64) feature.Feature {
	t.Helper()
	f, err := e.lines.Get(id)
	require.NoError(t, err)
	return f
}

func (e *env) warnings() []string {
	var out []string
	for _, entry := range e.hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			out = append(out, entry.Message)
		}
	}
	return out
}

func square(x, y, size float64) orb.LineString {
	return orb.LineString{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}
}
