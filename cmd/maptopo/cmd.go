package main

import (
	"fmt"
	"strings"

	"github.com/beetlebugorg/maptopo/pkg/maptopo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRoot builds the command tree around a fresh configuration.
func newRoot() (*cobra.Command, *viper.Viper) {
	cfg := viper.New()
	cfg.SetEnvPrefix("MAPTOPO")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	cfg.AutomaticEnv()

	root := &cobra.Command{
		Use:   "maptopo",
		Short: "Repair and classify the topology of digitised map data.",
		Long: `maptopo closes coastlines, labels contours, classifies lakes, levels rivers,
ties roads to settlements and normalises vegetation areas of a dataset stored
as GeoJSON files or PostGIS tables.

Configuration can be set in a configuration file (--config), with flags, or
with environment variables named MAPTOPO_<VAR>, where dots and dashes in the
variable name become underscores (e.g. MAPTOPO_COAST_NOISE). A .env file in
the working directory is read first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the resolution stages on a dataset and commit the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, cfg)
		},
	}

	stages := &cobra.Command{
		Use:   "stages",
		Short: "List the stages in run order.",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range []maptopo.StageName{
				maptopo.StageCoast, maptopo.StageElevation, maptopo.StageLakes,
				maptopo.StageRivers, maptopo.StageRoads, maptopo.StageVegetation,
			} {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	addFlags(cfg, root.PersistentFlags(), run.Flags())
	root.AddCommand(run, stages)
	return root, cfg
}

// setConfig reads the configuration file, if there is one.
func setConfig(cfg *viper.Viper) error {
	if path := cfg.GetString("config"); path != "" {
		cfg.SetConfigFile(path)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("maptopo: problem reading configuration file: %w", err)
		}
	}
	return nil
}

func newLogger(cfg *viper.Viper) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(level)
	return log, nil
}

func runCommand(cmd *cobra.Command, cfg *viper.Viper) error {
	ctx := cmd.Context()
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	log.SetOutput(cmd.ErrOrStderr())

	opts, err := runOptions(cfg)
	if err != nil {
		return err
	}
	opts.Log = log

	var (
		src  maptopo.Source
		sink maptopo.Sink
	)
	switch dir, url := cfg.GetString("geojson"), cfg.GetString("database"); {
	case dir != "":
		in := maptopo.OpenGeoJSON(dir, log)
		src, sink = in, in
		if out := cfg.GetString("out"); out != "" {
			sink = maptopo.OpenGeoJSON(out, log)
		}
	case url != "":
		db, err := maptopo.OpenPostGIS(ctx, url, uint64(cfg.GetInt("retries")), log)
		if err != nil {
			return err
		}
		defer db.Close(ctx)
		src, sink = db, db
	default:
		return fmt.Errorf("maptopo: one of --geojson or --database is required")
	}

	summary, err := maptopo.Run(ctx, src, sink, opts)
	if err != nil {
		return err
	}
	return summary.Report(cmd.OutOrStdout())
}
