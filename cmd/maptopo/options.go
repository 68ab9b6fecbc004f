package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beetlebugorg/maptopo/pkg/maptopo"
	"github.com/paulmach/orb"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// option is a configuration variable that can be set in the config file,
// the environment (MAPTOPO_<NAME>) or a flag.
type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	persistent             bool
	// whole keeps each []string value intact instead of splitting it on
	// commas, for values that contain commas themselves.
	whole bool
}

func options() []option {
	d := maptopo.DefaultOptions()
	return []option{
		{name: "config", usage: "path to a configuration file", defaultVal: "", persistent: true},
		{name: "log-level", usage: "log level (debug, info, warn, error)", defaultVal: "info", persistent: true},
		{name: "prefix", shorthand: "p", usage: "dataset name; tables are <prefix>_lines, <prefix>_pts and <prefix>_polys", defaultVal: "", persistent: true},
		{name: "geojson", usage: "directory holding the dataset as GeoJSON files", defaultVal: ""},
		{name: "out", usage: "directory to write GeoJSON output to instead of --geojson", defaultVal: ""},
		{name: "database", usage: "PostGIS connection URL, used when --geojson is not set", defaultVal: ""},
		{name: "retries", usage: "connection attempts before giving up on the database", defaultVal: 5},
		{name: "stages", usage: "stages to run; empty runs all", defaultVal: []string{}},
		{name: "sequence-start", usage: "lowest id of synthetic features", defaultVal: int(d.SequenceStart)},
		{name: "metrics-file", usage: "write Prometheus metrics of the run to this file", defaultVal: ""},
		{name: "dry-run", usage: "run every stage but commit nothing", defaultVal: false},

		{name: "coast.connect", usage: "largest coastline gap to bridge", defaultVal: d.Coast.Connect},
		{name: "coast.noise", usage: "buffer radius filling river inlets and dropping noise rings", defaultVal: d.Coast.Noise},
		{name: "coast.mainland", usage: "build the main shore from open coastlines", defaultVal: d.Coast.Mainland},
		{name: "coast.islands", usage: "point inside an island, as x,y; repeat for more", defaultVal: []string{}, whole: true},
		{name: "coast.lakes", usage: "lake drawn as coastline, as name,surface,x,y; repeat for more", defaultVal: []string{}, whole: true},

		{name: "elevation.label-match", usage: "largest distance between a label and its contour", defaultVal: d.Elevation.LabelMatch},
		{name: "elevation.connect", usage: "largest contour gap to bridge", defaultVal: d.Elevation.Connect},
		{name: "elevation.step", usage: "contour interval in meters", defaultVal: d.Elevation.Step},

		{name: "lakes.prune", usage: "shortest lake outline kept", defaultVal: d.Lakes.Prune},
		{name: "lakes.step", usage: "contour interval a lake must sit in", defaultVal: d.Lakes.Step},
		{name: "lakes.fill", usage: "fill colour of lake bodies", defaultVal: d.Lakes.Fill},

		{name: "rivers.epsilon", usage: "largest distance between a river end and its terminal", defaultVal: d.Rivers.Epsilon},
		{name: "rivers.area-fill", usage: "fill colour of rivers drawn as areas", defaultVal: d.Rivers.AreaFill},

		{name: "roads.epsilon", usage: "largest distance a road end or vertex is snapped", defaultVal: d.Roads.Epsilon},

		{name: "vegetation.classes", usage: "vegetation classes, lowest priority first", defaultVal: d.Vegetation.Classes},
	}
}

// addFlags registers every option on the flag sets and binds it in cfg.
func addFlags(cfg *viper.Viper, persistent, local *pflag.FlagSet) {
	for _, o := range options() {
		set := local
		if o.persistent {
			set = persistent
		}
		switch v := o.defaultVal.(type) {
		case string:
			set.StringP(o.name, o.shorthand, v, o.usage)
		case []string:
			if o.whole {
				set.StringArrayP(o.name, o.shorthand, v, o.usage)
			} else {
				set.StringSliceP(o.name, o.shorthand, v, o.usage)
			}
		case bool:
			set.BoolP(o.name, o.shorthand, v, o.usage)
		case int:
			set.IntP(o.name, o.shorthand, v, o.usage)
		case float64:
			set.Float64P(o.name, o.shorthand, v, o.usage)
		default:
			panic(fmt.Sprintf("option %s: invalid default type %T", o.name, v))
		}
		if err := cfg.BindPFlag(o.name, set.Lookup(o.name)); err != nil {
			panic(err)
		}
	}
}

// runOptions builds run options from the configuration.
func runOptions(cfg *viper.Viper) (maptopo.Options, error) {
	opts := maptopo.DefaultOptions()
	opts.Prefix = cfg.GetString("prefix")
	if opts.Prefix == "" {
		return opts, fmt.Errorf("maptopo: a dataset prefix is required")
	}
	for _, name := range cfg.GetStringSlice("stages") {
		s, err := maptopo.ParseStage(name)
		if err != nil {
			return opts, err
		}
		opts.Stages = append(opts.Stages, s)
	}
	opts.SequenceStart = cfg.GetInt64("sequence-start")
	opts.MetricsFile = cfg.GetString("metrics-file")
	opts.DryRun = cfg.GetBool("dry-run")

	opts.Coast.Connect = cfg.GetFloat64("coast.connect")
	opts.Coast.Noise = cfg.GetFloat64("coast.noise")
	opts.Coast.Mainland = cfg.GetBool("coast.mainland")
	for _, s := range cfg.GetStringSlice("coast.islands") {
		p, err := parsePoint(s)
		if err != nil {
			return opts, fmt.Errorf("maptopo: island %q: %w", s, err)
		}
		opts.Coast.Islands = append(opts.Coast.Islands, p)
	}
	for _, s := range cfg.GetStringSlice("coast.lakes") {
		lake, err := parseLake(s)
		if err != nil {
			return opts, fmt.Errorf("maptopo: lake %q: %w", s, err)
		}
		opts.Coast.Lakes = append(opts.Coast.Lakes, lake)
	}

	opts.Elevation.LabelMatch = cfg.GetFloat64("elevation.label-match")
	opts.Elevation.Connect = cfg.GetFloat64("elevation.connect")
	opts.Elevation.Step = cfg.GetInt("elevation.step")

	opts.Lakes.Prune = cfg.GetFloat64("lakes.prune")
	opts.Lakes.Step = cfg.GetInt("lakes.step")
	opts.Lakes.Fill = cfg.GetString("lakes.fill")

	opts.Rivers.Epsilon = cfg.GetFloat64("rivers.epsilon")
	opts.Rivers.AreaFill = cfg.GetString("rivers.area-fill")

	opts.Roads.Epsilon = cfg.GetFloat64("roads.epsilon")

	opts.Vegetation.Classes = cfg.GetStringSlice("vegetation.classes")
	return opts, nil
}

// parsePoint reads "x,y".
func parsePoint(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("expected x,y")
	}
	var p orb.Point
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Point{}, err
		}
		p[i] = v
	}
	return p, nil
}

// parseLake reads "name,surface,x,y".
func parseLake(s string) (maptopo.NamedLake, error) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return maptopo.NamedLake{}, fmt.Errorf("expected name,surface,x,y")
	}
	surface, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return maptopo.NamedLake{}, err
	}
	p, err := parsePoint(parts[2])
	if err != nil {
		return maptopo.NamedLake{}, err
	}
	return maptopo.NamedLake{Name: strings.TrimSpace(parts[0]), Surface: surface, Point: p}, nil
}
