// Package maptopo repairs and classifies the topology of digitised map
// vector data.
//
// A dataset is three tables of features (lines, points and polygons) as
// produced by converting a hand-drawn SVG map. maptopo closes coastlines
// into shore rings, labels contour lines with elevations, classifies lakes,
// builds a leveled river network, ties roads to settlements and turns
// vegetation outlines into non-overlapping areas.
//
// # Basic Usage
//
//	src := maptopo.OpenGeoJSON("data/", log)
//	opts := maptopo.DefaultOptions()
//	opts.Prefix = "harn"
//
//	summary, err := maptopo.Run(ctx, src, src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary.Report(os.Stdout)
//
// # Stages
//
// Stages always run in the order coast, elevation, lakes, rivers, roads,
// vegetation. Options.Stages selects a subset:
//
//	opts.Stages = []maptopo.StageName{maptopo.StageCoast, maptopo.StageRivers}
//
// # Storage
//
// A Source fills the working dataset and a Sink persists it once every
// stage succeeded. GeoJSON directories rewrite each partition file as a
// whole; PostGIS databases apply only the changes of the run, in one
// transaction:
//
//	db, err := maptopo.OpenPostGIS(ctx, "postgres://localhost/harn", 5, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close(ctx)
//	summary, err := maptopo.Run(ctx, db, db, opts)
//
// A failed or cancelled run commits nothing.
package maptopo
