package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/image-dehazer/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// options holds the command line flags
type options struct {
	configPath string
	debug      bool

	radius int
	eps    float64
	weight float64
	maxV1  float64
	gamma  bool

	outDir   string
	ext      string
	quality  int
	lossless bool
	compare  bool

	transmission bool
	histogram    bool
}

func newRootCmd() *cobra.Command {
	var opts options
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:          "image-dehazer [flags] <image|dir|url>...",
		Short:        "Remove haze from photographs using the dark channel prior",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := initLogger(opts.debug)
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				logger.WithError(err).Error("invalid configuration")
				return err
			}
			return run(cmd.Context(), logger, cfg, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "configuration file (json or yaml)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	f.IntVarP(&opts.radius, "radius", "r", defaults.Dehaze.Radius, "guided filter window radius")
	f.Float64Var(&opts.eps, "eps", defaults.Dehaze.Eps, "guided filter regularization")
	f.Float64VarP(&opts.weight, "weight", "w", defaults.Dehaze.Weight, "haze density weight")
	f.Float64Var(&opts.maxV1, "max-v1", defaults.Dehaze.MaxV1, "haze density cap (0..1)")
	f.BoolVar(&opts.gamma, "gamma", defaults.Dehaze.Gamma, "apply midtone gamma correction")

	f.StringVarP(&opts.outDir, "out", "o", defaults.Output.OutputDir, "output directory")
	f.StringVar(&opts.ext, "ext", defaults.Output.Format, "output format: jpg|png|webp|tiff|bmp (default: input format)")
	f.IntVar(&opts.quality, "quality", defaults.Output.Quality, "JPEG/WebP output quality (1-100)")
	f.BoolVar(&opts.lossless, "lossless", defaults.Output.Lossless, "WebP lossless mode")
	f.BoolVar(&opts.compare, "compare", defaults.Output.Compare, "also write the input and result side by side")

	f.BoolVar(&opts.transmission, "transmission", false, "also write the haze density map")
	f.BoolVar(&opts.histogram, "histogram", false, "also write the dark channel histogram chart")

	cmd.AddCommand(newConfigCmd())
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set explicitly on top of it
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(opts.configPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("radius") {
		cfg.Dehaze.Radius = opts.radius
	}
	if f.Changed("eps") {
		cfg.Dehaze.Eps = opts.eps
	}
	if f.Changed("weight") {
		cfg.Dehaze.Weight = opts.weight
	}
	if f.Changed("max-v1") {
		cfg.Dehaze.MaxV1 = opts.maxV1
	}
	if f.Changed("gamma") {
		cfg.Dehaze.Gamma = opts.gamma
	}
	if f.Changed("out") {
		cfg.Output.OutputDir = opts.outDir
	}
	if f.Changed("ext") {
		cfg.Output.Format = opts.ext
	}
	if f.Changed("quality") {
		cfg.Output.Quality = opts.quality
	}
	if f.Changed("lossless") {
		cfg.Output.Lossless = opts.lossless
	}
	if f.Changed("compare") {
		cfg.Output.Compare = opts.compare
	}
	if f.Changed("transmission") {
		cfg.Debug.Transmission = opts.transmission
	}
	if f.Changed("histogram") {
		cfg.Debug.Histogram = opts.histogram
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
