package statistics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00B"},
		{512, "512.00B"},
		{1023, "1023.00B"},
		{1024, "1.00KB"},
		{1536, "1.50KB"},
		{1253656, "1.20MB"},
		{1253656678, "1.17GB"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.in))
		})
	}
}

func TestStatistics_SizeTotals(t *testing.T) {
	s := NewStatistics()
	s.AddFilesFound(3)
	s.AddCompressed(1000, 600)
	s.AddCompressed(1000, 400)
	s.IncrementFallbackEncodes()

	assert.Equal(t, int64(3), s.TotalFilesFound)
	assert.Equal(t, int64(2), s.FilesCompressed)
	assert.Equal(t, int64(2000), s.BytesBefore)
	assert.Equal(t, int64(1000), s.BytesAfter)
	assert.InDelta(t, -50.0, s.SizeChange(), 1e-9)
	assert.Zero(t, NewStatistics().SizeChange())
}

func TestStatistics_Summary(t *testing.T) {
	s := NewStatistics()
	s.AddFilesFound(1)
	s.IncrementFilesProcessed()
	s.AddCompressed(2048, 1024)
	s.IncrementPassesCompleted()
	s.Finalize()

	summary := s.GetSummary()
	assert.Contains(t, summary, "Eligible Found: 1")
	assert.Contains(t, summary, "File Passes Processed: 1")
	assert.Contains(t, summary, "Before: 2.00KB")
	assert.Contains(t, summary, "After: 1.00KB")
	assert.Contains(t, summary, "Change: -50.00%")
}

func TestStatistics_ErrorSummary(t *testing.T) {
	s := NewStatistics()
	assert.Equal(t, "No errors occurred during processing", s.GetErrorSummary())

	for i := 0; i < 12; i++ {
		s.IncrementFilesWithErrors()
		s.AddError(fmt.Sprintf("img%d.jpg", i), "decode", "broken")
	}
	summary := s.GetErrorSummary()
	assert.Contains(t, summary, "Errors (12 total)")
	assert.Contains(t, summary, "img9.jpg")
	assert.NotContains(t, summary, "img10.jpg")
	assert.Contains(t, summary, "... and 2 more errors")
	assert.Equal(t, int64(12), s.GetFilesWithErrors())
}
