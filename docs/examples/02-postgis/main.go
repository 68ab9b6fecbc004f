package main

import (
	"context"
	"os"

	"github.com/beetlebugorg/maptopo/pkg/maptopo"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()
	log := logrus.New()

	db, err := maptopo.OpenPostGIS(ctx, "postgres://postgres@localhost:5432/maps", 5, log)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close(ctx)

	opts := maptopo.DefaultOptions()
	opts.Prefix = "harn"
	opts.Log = log

	// Islands whose coast should grow over river inlets, and lakes drawn
	// with the coastline.
	opts.Coast.Islands = append(opts.Coast.Islands, [2]float64{0.512, 0.318})
	opts.Coast.Lakes = append(opts.Coast.Lakes, maptopo.NamedLake{
		Name:    "Arain",
		Surface: 4180,
		Point:   [2]float64{0.2731, 0.4402},
	})

	// Only the changes of the run are written, in one transaction.
	summary, err := maptopo.Run(ctx, db, db, opts)
	if err != nil {
		log.Fatal(err)
	}
	summary.Report(os.Stdout)
}
