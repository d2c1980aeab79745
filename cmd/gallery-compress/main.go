package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gallery-compress/internal/batch"
	"gallery-compress/internal/compressor"
	"gallery-compress/internal/config"
	"gallery-compress/internal/logger"
	"gallery-compress/internal/manifest"
	"gallery-compress/internal/statistics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
	version = "dev"
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "gallery-compress",
	Short: "Compress and resize gallery photos for the web",
	Long: `gallery-compress re-encodes every JPEG and PNG in the input folder as JPEG,
twice: a full-size variant into the output folder and a thumbnail variant into
its "small" subfolder. Images are only ever scaled down, never up.

Afterwards the sorted list of .jpg file names in the input folder is written
to list.txt.

Example:
  gallery-compress -w 1600 -sw 400 -q 95 --out-folder fotogaleria-festivalu-2022 --in-folder origin`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompress(cmd)
	},
}

// compressCmd compresses a single file.
var compressCmd = &cobra.Command{
	Use:   "compress <source> <destination>",
	Short: "Compress and resize a single image",
	Long: `Compresses one image. The output format is taken from the destination
extension. Width and height default to unset (no resize).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompressFile(cmd, args[0], args[1])
	},
}

// manifestCmd writes the manifest without compressing anything.
var manifestCmd = &cobra.Command{
	Use:   "manifest [folder]",
	Short: "Write the sorted list of gallery file names",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManifest(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

// legacyFlags maps the multi-letter short flags of the old script to their
// long names; pflag only accepts single-letter shorthands.
var legacyFlags = map[string]string{
	"-he":  "--height",
	"-sw":  "--small-width",
	"-she": "--small-height",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")

	def := config.DefaultConfig()
	f := rootCmd.Flags()
	f.StringP("in-folder", "i", def.InFolder, "folder with the images to compress")
	f.StringP("out-folder", "o", def.OutFolder, "output folder for compressed images")
	f.IntP("quality", "q", def.Quality, "JPEG quality, 0 (worst) to 100 (best)")
	f.IntP("width", "w", def.Full.Width, "full-size target width, 0 for unset")
	f.Int("height", def.Full.Height, "full-size target height, 0 for unset (alias -he)")
	f.Int("small-width", def.Small.Width, "thumbnail target width, 0 for unset (alias -sw)")
	f.Int("small-height", def.Small.Height, "thumbnail target height, 0 for unset (alias -she)")

	compressCmd.Flags().IntP("quality", "q", def.Quality, "JPEG quality, 0 (worst) to 100 (best)")
	compressCmd.Flags().IntP("width", "w", 0, "target width, 0 for unset")
	compressCmd.Flags().Int("height", 0, "target height, 0 for unset")

	manifestCmd.Flags().StringP("in-folder", "i", def.InFolder, "folder to list")

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(versionCmd)
}

// rewriteLegacyFlags replaces -he, -sw and -she with their long forms.
// Arguments after "--" are left untouched.
func rewriteLegacyFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := legacyFlags[name]; ok {
			arg = long
			if hasValue {
				arg += "=" + value
			}
		}
		out = append(out, arg)
	}
	return out
}

// runCompress runs the full-size and thumbnail passes, then writes the manifest.
func runCompress(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	logConfig(log, cfg)

	stats := statistics.NewStatistics()
	driver := batch.NewDriver(cfg, log, stats, compressor.NewDefaultCompressor())
	runErr := driver.Run(cmd.Context())

	names, err := manifest.Generate(cfg.InFolder, cfg.Manifest.Extension, cfg.Manifest.Path)
	if err != nil {
		log.Errorf("Could not write manifest: %v", err)
		if runErr == nil {
			runErr = err
		}
	} else {
		log.Infof("Wrote %d names to %s", len(names), cfg.Manifest.Path)
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\n"+stats.GetSummary())
		if stats.GetFilesWithErrors() > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\n"+stats.GetErrorSummary())
		}
	}

	if runErr != nil {
		return fmt.Errorf("compression failed: %w", runErr)
	}
	log.Info("Done!")
	return nil
}

// runCompressFile compresses one file with the flags of the compress command.
func runCompressFile(cmd *cobra.Command, src, dst string) error {
	cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg)

	// The batch defaults for full.* do not apply to a single file.
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	res, err := compressor.NewDefaultCompressor().Compress(compressor.Request{
		SourcePath:   src,
		DestPath:     dst,
		Quality:      cfg.Quality,
		TargetWidth:  width,
		TargetHeight: height,
	})
	if err != nil {
		logger.WithFile(log, src).WithField("kind", compressor.Kind(err)).Error("Could not compress file")
		return err
	}

	logger.WithFile(log, dst).WithField("fallback", res.Fallback).Info(batch.FormatResult(res))
	return nil
}

// runManifest writes the manifest for the given or configured folder.
func runManifest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(args) > 0 {
		cfg.InFolder = args[0]
	}
	log := setupLogger(cfg)

	names, err := manifest.Generate(cfg.InFolder, cfg.Manifest.Extension, cfg.Manifest.Path)
	if err != nil {
		return err
	}
	log.Infof("Wrote %d names to %s", len(names), cfg.Manifest.Path)
	return nil
}

// logConfig prints the effective run settings.
func logConfig(log *logrus.Logger, cfg *config.Config) {
	logger.WithFields(log, logrus.Fields{
		"in_folder":    cfg.InFolder,
		"out_folder":   cfg.OutFolder,
		"quality":      cfg.Quality,
		"width":        cfg.Full.Width,
		"height":       cfg.Full.Height,
		"small_width":  cfg.Small.Width,
		"small_height": cfg.Small.Height,
	}).Info("Settings")
}

// setupLogger configures and returns a logger.
func setupLogger(cfg *config.Config) *logrus.Logger {
	loggerCfg := logger.DefaultConfig()
	loggerCfg.Level = cfg.Logging.Level
	loggerCfg.Format = cfg.Logging.Format
	loggerCfg.FilePath = cfg.Logging.FilePath
	loggerCfg.MaxSize = cfg.Logging.MaxSize
	loggerCfg.MaxBackups = cfg.Logging.MaxBackups
	loggerCfg.MaxAge = cfg.Logging.MaxAge
	loggerCfg.Compress = cfg.Logging.Compress
	loggerCfg.Console = !quiet

	if verbose {
		loggerCfg.Level = "debug"
	}
	if quiet {
		loggerCfg.Level = "error"
	}

	log, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log = logrus.New()
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(rewriteLegacyFlags(os.Args[1:]))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
