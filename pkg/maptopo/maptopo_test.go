package maptopo

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnLines = `{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[0.5,0],[1,0],[1,0.5],[1,1]]},
  "properties":{"id":1,"name":"-","type":"COASTLINE","style":"stroke: #000"}},
 {"type":"Feature","geometry":{"type":"LineString","coordinates":[[1,1.003],[0.5,1.003],[0,1],[0,0.5],[0,0.004]]},
  "properties":{"id":2,"name":"-","type":"COASTLINE","style":"stroke: #000"}},
 {"type":"Feature","geometry":{"type":"LineString","coordinates":[[3,0],[5,0],[5,2],[3,2],[3,0]]},
  "properties":{"id":3,"name":"-","type":"FOREST","style":"fill: green"}},
 {"type":"Feature","geometry":{"type":"LineString","coordinates":[[4,1],[6,1],[6,3],[4,3],[4,1]]},
  "properties":{"id":4,"name":"-","type":"SNOW_x2F_ICE","style":"fill: white"}}
]}`

type recordingSink struct {
	commits int
}

func (s *recordingSink) Commit(ctx context.Context, ds *Dataset) error {
	s.commits++
	return nil
}

func testOptions(t *testing.T) Options {
	t.Helper()
	log, _ := test.NewNullLogger()
	opts := DefaultOptions()
	opts.Prefix = "harn"
	opts.Coast.Mainland = false
	opts.Log = log
	return opts
}

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harn_lines.geojson"), []byte(harnLines), 0o644))
	return dir
}

func TestRun(t *testing.T) {
	dir := writeDataset(t)
	opts := testOptions(t)
	opts.MetricsFile = filepath.Join(t.TempDir(), "maptopo.prom")
	src := OpenGeoJSON(dir, opts.Log)

	summary, err := Run(context.Background(), src, src, opts)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Results, 6)
	assert.Equal(t, StageCoast, summary.Results[0].Stage)
	assert.Equal(t, 0, summary.Unresolved())
	assert.Equal(t, 2, summary.Changes["insert"], "two vegetation areas")
	assert.Equal(t, 1, summary.Changes["delete"], "merged coastline")
	assert.Equal(t, 1, summary.Changes["modify"], "closed shore ring")
	assert.FileExists(t, opts.MetricsFile)

	back := OpenGeoJSON(dir, opts.Log)
	ds := store.NewDataset("harn", geometry.NewGEOS(), opts.SequenceStart)
	require.NoError(t, back.Load(context.Background(), ds))
	assert.Equal(t, 2, ds.Polygons.Len())
	f, err := ds.Lines.Get(1)
	require.NoError(t, err)
	assert.Equal(t, feature.Elevation{}, f.Type)
	_, err = ds.Lines.Get(2)
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, summary.Report(&buf))
	assert.Contains(t, buf.String(), "merged=1")
	assert.Contains(t, buf.String(), "insert=2 modify=1 delete=1")
}

func TestRunSelectedStages(t *testing.T) {
	dir := writeDataset(t)
	opts := testOptions(t)
	opts.Stages = []StageName{StageVegetation, StageCoast, StageVegetation}
	sink := &recordingSink{}

	summary, err := Run(context.Background(), OpenGeoJSON(dir, opts.Log), sink, opts)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, StageCoast, summary.Results[0].Stage)
	assert.Equal(t, StageVegetation, summary.Results[1].Stage)
	assert.Equal(t, 1, sink.commits)
}

func TestRunCancelledCommitsNothing(t *testing.T) {
	dir := writeDataset(t)
	opts := testOptions(t)
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, OpenGeoJSON(dir, opts.Log), sink, opts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sink.commits)
}

func TestRunDryRun(t *testing.T) {
	dir := writeDataset(t)
	opts := testOptions(t)
	opts.DryRun = true
	sink := &recordingSink{}

	summary, err := Run(context.Background(), OpenGeoJSON(dir, opts.Log), sink, opts)
	require.NoError(t, err)
	assert.Zero(t, sink.commits)
	assert.NotZero(t, summary.Changes["insert"])
}

func TestParseStage(t *testing.T) {
	n, err := ParseStage("vegetation")
	require.NoError(t, err)
	assert.Equal(t, StageVegetation, n)

	_, err = ParseStage("weather")
	assert.Error(t, err)
}
