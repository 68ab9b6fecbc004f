package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/beetlebugorg/maptopo/pkg/maptopo"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	opts := maptopo.DefaultOptions()
	opts.Prefix = "harn"
	opts.Log = log
	opts.DryRun = true
	opts.Stages = []maptopo.StageName{maptopo.StageCoast, maptopo.StageRivers}
	opts.MetricsFile = "maptopo.prom"

	// A run that does not finish in time commits nothing.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dir := maptopo.OpenGeoJSON("data", log)
	summary, err := maptopo.Run(ctx, dir, dir, opts)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Fatal("run timed out, nothing was written")
	case err != nil:
		log.Fatal(err)
	}

	summary.Report(os.Stdout)
	if n := summary.Unresolved(); n > 0 {
		fmt.Printf("%d features need manual fixes before committing\n", n)
	}
}
