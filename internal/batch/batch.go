package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gallery-compress/internal/compressor"
	"gallery-compress/internal/config"
	"gallery-compress/internal/logger"
	"gallery-compress/internal/statistics"

	"github.com/sirupsen/logrus"
)

// Pass is one output variant: every eligible file is compressed into OutDir
// with the given bounding box.
type Pass struct {
	Name   string
	OutDir string
	Width  int
	Height int
}

// FileInfo contains information about an eligible source file.
type FileInfo struct {
	Path      string
	Name      string
	Size      int64
	Extension string
}

// Driver runs the full-size and thumbnail passes over the input folder.
type Driver struct {
	config     *config.Config
	logger     *logrus.Logger
	stats      *statistics.Statistics
	compressor compressor.Compressor
}

// NewDriver returns a new Driver.
func NewDriver(
	cfg *config.Config,
	logger *logrus.Logger,
	stats *statistics.Statistics,
	compressor compressor.Compressor,
) *Driver {
	return &Driver{
		config:     cfg,
		logger:     logger,
		stats:      stats,
		compressor: compressor,
	}
}

// Passes returns the full-size pass followed by the thumbnail pass.
func (d *Driver) Passes() []Pass {
	return []Pass{
		{
			Name:   "full",
			OutDir: d.config.OutFolder,
			Width:  d.config.Full.Width,
			Height: d.config.Full.Height,
		},
		{
			Name:   "small",
			OutDir: d.config.SmallOutFolder(),
			Width:  d.config.Small.Width,
			Height: d.config.Small.Height,
		},
	}
}

// Run lists the input folder once, creates both output folders and runs
// every pass over the same file list.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("Starting compression run")

	files, err := d.DiscoverFiles()
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}
	d.stats.AddFilesFound(len(files))
	d.logger.Infof("Found %d eligible images in %s", len(files), d.config.InFolder)

	passes := d.Passes()
	for _, pass := range passes {
		if err := d.createDirectory(pass.OutDir); err != nil {
			return fmt.Errorf("could not create directory %s: %w", pass.OutDir, err)
		}
	}

	for _, pass := range passes {
		if err := d.RunPass(ctx, files, pass); err != nil {
			d.stats.Finalize()
			return err
		}
	}

	d.stats.Finalize()
	d.logger.Info("Compression run completed")
	return nil
}

// DiscoverFiles returns the eligible files directly inside the input folder,
// in directory listing order.
func (d *Driver) DiscoverFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.config.InFolder)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !d.config.IsSupportedExtension(ext) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			d.logger.Warnf("Error accessing path %s: %v", e.Name(), err)
			continue
		}

		files = append(files, FileInfo{
			Path:      filepath.Join(d.config.InFolder, e.Name()),
			Name:      e.Name(),
			Size:      info.Size(),
			Extension: strings.ToLower(ext),
		})
		d.stats.IncrementFileType(strings.ToUpper(strings.TrimPrefix(strings.ToLower(ext), ".")))
	}
	return files, nil
}

// RunPass compresses every file into pass.OutDir. A failed file is logged and
// recorded; the pass continues unless stop_on_error is set.
func (d *Driver) RunPass(ctx context.Context, files []FileInfo, pass Pass) error {
	log := logger.WithOperation(d.logger, pass.Name)
	log.WithFields(logrus.Fields{
		"out":    pass.OutDir,
		"width":  formatTarget(pass.Width),
		"height": formatTarget(pass.Height),
	}).Info("Starting pass")

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pass %s interrupted: %w", pass.Name, err)
		}

		log.WithFields(logrus.Fields{
			"size": statistics.FormatSize(file.Size),
			"ext":  file.Extension,
		}).Infof("processing file: %s %d/%d", file.Name, i+1, len(files))
		if err := d.processFile(file, pass); err != nil && d.config.Processing.StopOnError {
			return fmt.Errorf("pass %s: %w", pass.Name, err)
		}
	}

	d.stats.IncrementPassesCompleted()
	return nil
}

// processFile compresses a single file for the given pass.
func (d *Driver) processFile(file FileInfo, pass Pass) error {
	d.stats.IncrementFilesProcessed()

	req := compressor.Request{
		SourcePath:   file.Path,
		DestPath:     filepath.Join(pass.OutDir, OutputName(file.Name, d.config.OutputExtension)),
		Quality:      d.config.Quality,
		TargetWidth:  pass.Width,
		TargetHeight: pass.Height,
	}

	res, err := d.compressor.Compress(req)
	if err != nil {
		kind := compressor.Kind(err)
		logger.WithFileOperation(d.logger, file.Path, pass.Name).
			WithField("kind", kind).
			Errorf("Could not compress file: %v", err)
		d.stats.IncrementFilesWithErrors()
		d.stats.AddError(file.Path, pass.Name+"/"+kind, err.Error())
		return err
	}

	d.stats.AddCompressed(res.OriginalSize, res.CompressedSize)
	entry := logger.WithFileOperation(d.logger, res.DestPath, pass.Name)
	if res.Fallback {
		d.stats.IncrementFallbackEncodes()
		entry.Debugf("Converted to %s before encoding", res.Mode)
	}
	entry.WithFields(logrus.Fields{
		"width":      res.Width,
		"height":     res.Height,
		"original":   statistics.FormatSize(res.OriginalSize),
		"compressed": statistics.FormatSize(res.CompressedSize),
		"change":     fmt.Sprintf("%.2f%%", res.SizeChange()),
	}).Info(FormatResult(res))
	return nil
}

// createDirectory creates a directory and its parents if they do not exist.
func (d *Driver) createDirectory(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return err
		}
		d.stats.IncrementDirectoriesCreated()
		d.logger.Debugf("Created directory: %s", dirPath)
	}
	return nil
}

// OutputName replaces the last extension of name with ext.
func OutputName(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// FormatResult renders the per-file size report line.
func FormatResult(res compressor.Result) string {
	return fmt.Sprintf("Image shape %15s Size before/after compression: %s / %s %.2f%% of the original image size.",
		fmt.Sprintf("(%d, %d)", res.Width, res.Height),
		statistics.FormatSize(res.OriginalSize),
		statistics.FormatSize(res.CompressedSize),
		res.SizeChange())
}

func formatTarget(v int) string {
	if v <= 0 {
		return "unset"
	}
	return fmt.Sprint(v)
}
