package statistics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Statistics contains all statistics for a compression run.
type Statistics struct {
	TotalFilesFound int64

	// Counted once per file and pass.
	TotalFilesProcessed int64
	FilesCompressed     int64
	FilesWithErrors     int64
	FallbackEncodes     int64

	BytesBefore int64
	BytesAfter  int64

	DirectoriesCreated int64
	PassesCompleted    int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Errors []StatError

	mutex sync.RWMutex

	FileTypeStats map[string]int64
}

// StatError represents an error that occurred during processing.
type StatError struct {
	FilePath  string
	Operation string
	Error     string
	Timestamp time.Time
}

// NewStatistics returns a new Statistics instance.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime:     time.Now(),
		FileTypeStats: make(map[string]int64),
		Errors:        make([]StatError, 0),
	}
}

// AddFilesFound increases the count of found files by n.
func (s *Statistics) AddFilesFound(n int) {
	atomic.AddInt64(&s.TotalFilesFound, int64(n))
}

// IncrementFilesProcessed increases the count of processed files by 1.
func (s *Statistics) IncrementFilesProcessed() {
	atomic.AddInt64(&s.TotalFilesProcessed, 1)
}

// IncrementFilesWithErrors increases the count of files with errors by 1.
func (s *Statistics) IncrementFilesWithErrors() {
	atomic.AddInt64(&s.FilesWithErrors, 1)
}

// IncrementFallbackEncodes increases the count of truecolor retries by 1.
func (s *Statistics) IncrementFallbackEncodes() {
	atomic.AddInt64(&s.FallbackEncodes, 1)
}

// IncrementDirectoriesCreated increases the count of created directories by 1.
func (s *Statistics) IncrementDirectoriesCreated() {
	atomic.AddInt64(&s.DirectoriesCreated, 1)
}

// IncrementPassesCompleted increases the count of finished passes by 1.
func (s *Statistics) IncrementPassesCompleted() {
	atomic.AddInt64(&s.PassesCompleted, 1)
}

// AddCompressed records one successfully written file and its sizes.
func (s *Statistics) AddCompressed(before, after int64) {
	atomic.AddInt64(&s.FilesCompressed, 1)
	atomic.AddInt64(&s.BytesBefore, before)
	atomic.AddInt64(&s.BytesAfter, after)
}

// IncrementFileType increases the count for a specific file type by 1.
func (s *Statistics) IncrementFileType(fileType string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.FileTypeStats[fileType]++
}

// Finalize records the end time and duration.
func (s *Statistics) Finalize() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// AddError records an error that occurred during processing.
func (s *Statistics) AddError(filePath, operation, errorMsg string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.Errors = append(s.Errors, StatError{
		FilePath:  filePath,
		Operation: operation,
		Error:     errorMsg,
		Timestamp: time.Now(),
	})
}

// SizeChange returns the overall signed size change in percent.
func (s *Statistics) SizeChange() float64 {
	before := atomic.LoadInt64(&s.BytesBefore)
	if before == 0 {
		return 0
	}
	after := atomic.LoadInt64(&s.BytesAfter)
	return float64(after-before) / float64(before) * 100
}

// GetSummary returns a formatted summary of all statistics.
func (s *Statistics) GetSummary() string {
	return fmt.Sprintf(`Gallery Compress Statistics Summary:

Files:
		Eligible Found: %d
		Each eligible file is compressed once per pass.
		File Passes Processed: %d
		File Passes Compressed: %d
		File Passes Failed: %d
		Truecolor Fallbacks: %d

Size:
		Before: %s
		After: %s
		Change: %.2f%%

Run:
		Passes: %d
		Directories Created: %d
		Duration: %v`,
		atomic.LoadInt64(&s.TotalFilesFound),
		atomic.LoadInt64(&s.TotalFilesProcessed),
		atomic.LoadInt64(&s.FilesCompressed),
		atomic.LoadInt64(&s.FilesWithErrors),
		atomic.LoadInt64(&s.FallbackEncodes),
		FormatSize(atomic.LoadInt64(&s.BytesBefore)),
		FormatSize(atomic.LoadInt64(&s.BytesAfter)),
		s.SizeChange(),
		atomic.LoadInt64(&s.PassesCompleted),
		atomic.LoadInt64(&s.DirectoriesCreated),
		s.GetDuration())
}

// GetErrorSummary returns a summary of errors that occurred during processing.
func (s *Statistics) GetErrorSummary() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.Errors) == 0 {
		return "No errors occurred during processing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Errors (%d total):\n", len(s.Errors))
	for i, err := range s.Errors {
		if i >= 10 {
			fmt.Fprintf(&b, "  ... and %d more errors\n", len(s.Errors)-10)
			break
		}
		fmt.Fprintf(&b, "  [%s] %s: %s - %s\n",
			err.Timestamp.Format("15:04:05"),
			err.Operation,
			err.FilePath,
			err.Error)
	}
	return b.String()
}

var sizeUnits = []string{"", "K", "M", "G", "T", "P", "E", "Z"}

// FormatSize returns a human-readable size with two decimals and a binary
// unit prefix, e.g. 1253656 => "1.20MB".
func FormatSize(bytes int64) string {
	const factor = 1024
	b := float64(bytes)
	for _, unit := range sizeUnits {
		if b < factor {
			return fmt.Sprintf("%.2f%sB", b, unit)
		}
		b /= factor
	}
	return fmt.Sprintf("%.2fYB", b)
}

// GetFilesWithErrors returns the total number of files with errors.
func (s *Statistics) GetFilesWithErrors() int64 {
	return atomic.LoadInt64(&s.FilesWithErrors)
}

// GetDuration returns the total duration of the run.
func (s *Statistics) GetDuration() time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.Duration
}
