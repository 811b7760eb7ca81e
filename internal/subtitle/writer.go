package subtitle

import (
	"bufio"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"subforge/internal/logging"
)

const progressStep = 5

// Writer serializes segment sequences into SRT files.
type Writer struct {
	logger *slog.Logger
	filter *Filter
}

// NewWriter constructs a subtitle writer with the given hallucination
// phrase blacklist.
func NewWriter(logger *slog.Logger, phrases []string) *Writer {
	return &Writer{
		logger: logging.NewComponentLogger(logger, "subtitle-writer"),
		filter: NewFilter(phrases),
	}
}

// Write consumes segments in order and writes an SRT file to outputPath.
// Filtered segments consume no cue index; retained cues are numbered
// contiguously from 1. When duration is positive, coarse progress is logged
// in five-point buckets as the segment end times advance through the media.
//
// The file is written in place, not via a temporary; a crash mid-write can
// leave a partial subtitle file behind.
func (w *Writer) Write(segments iter.Seq[Segment], outputPath, itemID string, duration float64) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	defer file.Close()

	out := bufio.NewWriter(file)
	index := 1
	lastPercent := -progressStep

	for segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if w.filter.Drop(text) {
			continue
		}

		start := FormatTimestamp(segment.Start)
		end := FormatTimestamp(segment.End)
		if _, err := fmt.Fprintf(out, "%d\n%s --> %s\n%s\n\n", index, start, end, text); err != nil {
			return fmt.Errorf("write subtitle cue: %w", err)
		}
		index++

		if duration > 0 {
			percent := int(min(100.0, segment.End/duration*100.0))
			if percent >= lastPercent+progressStep {
				lastPercent = percent
				w.logProgress(itemID, percent)
			}
		}
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("flush subtitle file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close subtitle file: %w", err)
	}

	if duration > 0 && lastPercent < 100 {
		w.logProgress(itemID, 100)
	}
	return nil
}

func (w *Writer) logProgress(itemID string, percent int) {
	if w.logger == nil {
		return
	}
	w.logger.Info("transcription progress",
		logging.String(logging.FieldItemID, itemID),
		logging.Int("percent", percent),
	)
}
