package main

import (
	"context"
	"os"

	"github.com/beetlebugorg/maptopo/pkg/maptopo"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()

	// The directory holds harn_lines.geojson, harn_pts.geojson and
	// harn_polys.geojson as written by svg2geo.
	dir := maptopo.OpenGeoJSON("data", log)

	opts := maptopo.DefaultOptions()
	opts.Prefix = "harn"
	opts.Log = log

	// Read and write the same directory.
	summary, err := maptopo.Run(context.Background(), dir, dir, opts)
	if err != nil {
		log.Fatal(err)
	}
	summary.Report(os.Stdout)
}
