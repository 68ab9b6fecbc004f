package stage

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

func newTestEnv(t *testing.T) (*Env, *test.Hook) {
	t.Helper()
	engine := geometry.NewGEOS()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &Env{
		Data:   store.NewDataset("test", engine, 100000),
		Engine: engine,
		Log:    log,
	}, hook
}

func addLine(env *Env, raw, style string, g orb.Geometry) int64 {
	return env.Data.Lines.Insert(feature.Feature{Type: feature.MustParseType(raw), Style: style, Geometry: g})
}

func addPoint(env *Env, raw string, p orb.Point) int64 {
	return env.Data.Points.Insert(feature.Feature{Type: feature.MustParseType(raw), Geometry: p})
}

func typeOf(t *testing.T, env *Env, id int64) feature.Type {
	t.Helper()
	f, err := env.Data.Lines.Get(id)
	require.NoError(t, err)
	return f.Type
}

func square(x, y, size float64) orb.LineString {
	return orb.LineString{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}
}
