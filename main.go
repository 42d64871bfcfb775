package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"LanderRescue/internal/game"
	"LanderRescue/internal/platform/config"
	"LanderRescue/internal/platform/otel"
	"LanderRescue/internal/replay"
	"LanderRescue/internal/server"
	"LanderRescue/internal/storage/sqlite"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lander",
		Short: "Lander rescue mission server",
		Long: `lander hosts the mission engine for the lander rescue game: touchdown
classification, phased objectives, mission results and campaign progression.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(missionsCmd())

	if err := rootCmd.Execute(); err != nil {
		config.Exitf("lander: %v", err)
	}
}

// touchdownFlags registers NaN-defaulted overrides; unset flags stay nil.
type touchdownFlags struct {
	safeVertical      float64
	safeHorizontal    float64
	safeTilt          float64
	destroyVertical   float64
	destroyHorizontal float64
	destroyMag        float64
	uprightLimit      float64
	settleSeconds     float64
}

func (f *touchdownFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.safeVertical, "safe-vertical", math.NaN(), "override safe vertical speed (m/s)")
	fs.Float64Var(&f.safeHorizontal, "safe-horizontal", math.NaN(), "override safe horizontal speed (m/s)")
	fs.Float64Var(&f.safeTilt, "safe-tilt", math.NaN(), "override safe tilt (degrees)")
	fs.Float64Var(&f.destroyVertical, "destroy-vertical", math.NaN(), "override fatal vertical speed (m/s)")
	fs.Float64Var(&f.destroyHorizontal, "destroy-horizontal", math.NaN(), "override fatal horizontal speed (m/s)")
	fs.Float64Var(&f.destroyMag, "destroy-magnitude", math.NaN(), "override fatal combined speed (m/s)")
	fs.Float64Var(&f.uprightLimit, "upright-limit", math.NaN(), "override tilt tolerated while settling (degrees)")
	fs.Float64Var(&f.settleSeconds, "settle", math.NaN(), "override settle window in seconds (0 resolves at contact)")
}

func (f *touchdownFlags) overrides() game.ThresholdOverrides {
	opt := func(v float64) *float64 {
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return game.ThresholdOverrides{
		SafeVertical:      opt(f.safeVertical),
		SafeHorizontal:    opt(f.safeHorizontal),
		SafeTilt:          opt(f.safeTilt),
		DestroyVertical:   opt(f.destroyVertical),
		DestroyHorizontal: opt(f.destroyHorizontal),
		DestroyMagnitude:  opt(f.destroyMag),
		UprightLimit:      opt(f.uprightLimit),
		SettleSeconds:     opt(f.settleSeconds),
	}
}

func serveCmd() *cobra.Command {
	var (
		addr, dbPath, tuningPath, missionsDir string
		touchdown                             touchdownFlags
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := server.LoadAppConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("tuning") {
				cfg.TuningPath = tuningPath
			}
			if cmd.Flags().Changed("missions") {
				cfg.MissionsDir = missionsDir
			}
			cfg.Overrides = touchdown.overrides()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			otelCfg, err := otel.LoadConfig()
			if err != nil {
				return err
			}
			shutdown, err := otel.Start(ctx, otelCfg)
			if err != nil {
				log.Printf("%v (tracing disabled)", err)
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("otel shutdown: %v", err)
				}
			}()
			return server.StartApp(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	cmd.Flags().StringVar(&dbPath, "db", "data/lander.db", "sqlite result store path (empty disables persistence)")
	cmd.Flags().StringVar(&tuningPath, "tuning", "configs/world.json", "path to touchdown tuning JSON")
	cmd.Flags().StringVar(&missionsDir, "missions", "", "directory of extra mission YAML/JSON files")
	touchdown.register(cmd)
	return cmd
}

func replayCmd() *cobra.Command {
	var (
		dbPath      string
		missionsDir string
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>...",
		Short: "Play scripted telemetry through the engine and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if missionsDir != "" {
				if _, err := game.LoadMissionDir(missionsDir); err != nil {
					return err
				}
			}
			var opts []replay.Option
			if verbose {
				opts = append(opts, replay.WithLogger(log.New(cmd.ErrOrStderr(), "", 0)))
			}
			if dbPath != "" {
				store, err := sqlite.Open(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, replay.WithPublisher(sqlite.Publisher{Store: store}))
			}

			failed := 0
			for _, path := range args {
				sc, err := replay.Load(path)
				if err != nil {
					return err
				}
				report, err := replay.Run(cmd.Context(), sc, opts...)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printReport(cmd.OutOrStdout(), report, verbose)
				if report.Result == nil || report.Result.SuccessState == game.SuccessStateFail {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios did not succeed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "also store results in this sqlite file")
	cmd.Flags().StringVar(&missionsDir, "missions", "", "directory of extra mission YAML/JSON files")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every notification and engine log")
	return cmd
}

func missionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missions",
		Short: "List built-in missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range game.MissionIDs() {
				cfg, err := game.GetMission(id)
				if err != nil {
					return err
				}
				norm := game.NormalizeMissionConfig(cfg)
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %d phase(s), %.0fs\n",
					id, cfg.Category, len(norm.Phases), game.ResolveTimeLimit(norm))
			}
			return nil
		},
	}
}
