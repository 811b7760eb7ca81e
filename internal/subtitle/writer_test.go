package subtitle

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func segmentSeq(segments ...Segment) iter.Seq[Segment] {
	return slices.Values(segments)
}

func writeAndRead(t *testing.T, w *Writer, segments []Segment, duration float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.srt")
	if err := w.Write(segmentSeq(segments...), path, "item-1", duration); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestWriteBasicCues(t *testing.T) {
	w := NewWriter(nil, nil)
	got := writeAndRead(t, w, []Segment{
		{Start: 0, End: 2, Text: "First line"},
		{Start: 2, End: 4.5, Text: "Second line"},
	}, 0)

	want := "1\n00:00:00,000 --> 00:00:02,000\nFirst line\n\n" +
		"2\n00:00:02,000 --> 00:00:04,500\nSecond line\n\n"
	if got != want {
		t.Errorf("output mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestWriteFiltersBlacklistedAndEmpty(t *testing.T) {
	w := NewWriter(nil, []string{"ご視聴ありがとうございました"})
	got := writeAndRead(t, w, []Segment{
		{Start: 0, End: 2, Text: " ご視聴ありがとうございました "},
		{Start: 2, End: 4, Text: "Hello world"},
		{Start: 4, End: 5, Text: "   "},
		{Start: 5, End: 6, Text: "Goodbye"},
	}, 0)

	want := "1\n00:00:02,000 --> 00:00:04,000\nHello world\n\n" +
		"2\n00:00:05,000 --> 00:00:06,000\nGoodbye\n\n"
	if got != want {
		t.Errorf("output mismatch:\n got %q\nwant %q", got, want)
	}
	if strings.Contains(got, "ご視聴") {
		t.Error("blacklisted phrase leaked into output")
	}
}

func TestWriteTrimsCueText(t *testing.T) {
	w := NewWriter(nil, nil)
	got := writeAndRead(t, w, []Segment{
		{Start: 0, End: 1, Text: "  padded  "},
	}, 0)
	if !strings.Contains(got, "\npadded\n") {
		t.Errorf("cue text not trimmed: %q", got)
	}
}

func TestWriteAllSegmentsFiltered(t *testing.T) {
	w := NewWriter(nil, []string{"noise"})
	got := writeAndRead(t, w, []Segment{
		{Start: 0, End: 1, Text: "noise"},
		{Start: 1, End: 2, Text: ""},
	}, 0)
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestWriteIndicesContiguousAcrossFilteredRuns(t *testing.T) {
	w := NewWriter(nil, []string{"drop"})
	got := writeAndRead(t, w, []Segment{
		{Start: 0, End: 1, Text: "keep one"},
		{Start: 1, End: 2, Text: "drop"},
		{Start: 2, End: 3, Text: "drop"},
		{Start: 3, End: 4, Text: "keep two"},
		{Start: 4, End: 5, Text: "drop"},
		{Start: 5, End: 6, Text: "keep three"},
	}, 0)

	lines := strings.Split(got, "\n")
	var indices []string
	for i := 0; i < len(lines); i++ {
		if strings.Contains(lines[i], "-->") && i > 0 {
			indices = append(indices, lines[i-1])
		}
	}
	want := []string{"1", "2", "3"}
	if !slices.Equal(indices, want) {
		t.Errorf("cue indices = %v, want %v", indices, want)
	}
}

type progressRecorder struct {
	percents []int
}

func (r *progressRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *progressRecorder) Handle(_ context.Context, rec slog.Record) error {
	if rec.Message != "transcription progress" {
		return nil
	}
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "percent" {
			r.percents = append(r.percents, int(a.Value.Int64()))
		}
		return true
	})
	return nil
}

func (r *progressRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *progressRecorder) WithGroup(string) slog.Handler      { return r }

func TestWriteLogsProgressBuckets(t *testing.T) {
	recorder := &progressRecorder{}
	w := NewWriter(slog.New(recorder), nil)

	segments := []Segment{
		{Start: 0, End: 3, Text: "a"},
		{Start: 3, End: 4, Text: "b"},
		{Start: 4, End: 10, Text: "c"},
		{Start: 10, End: 10, Text: "d"},
		{Start: 10, End: 12, Text: "e"},
		{Start: 12, End: 50, Text: "f"},
		{Start: 50, End: 52, Text: "g"},
		{Start: 52, End: 99, Text: "h"},
	}
	writeAndRead(t, w, segments, 100)

	want := []int{3, 10, 50, 99, 100}
	if !slices.Equal(recorder.percents, want) {
		t.Fatalf("logged percents = %v, want %v", recorder.percents, want)
	}
	for i := 1; i < len(recorder.percents)-1; i++ {
		if step := recorder.percents[i] - recorder.percents[i-1]; step < progressStep {
			t.Errorf("bucket step %d -> %d below %d points",
				recorder.percents[i-1], recorder.percents[i], progressStep)
		}
	}
	if last := recorder.percents[len(recorder.percents)-1]; last != 100 {
		t.Errorf("final bucket = %d, want 100", last)
	}
}

func TestWriteProgressFinalBucketNotRepeated(t *testing.T) {
	recorder := &progressRecorder{}
	w := NewWriter(slog.New(recorder), nil)

	writeAndRead(t, w, []Segment{
		{Start: 0, End: 40, Text: "a"},
		{Start: 40, End: 100, Text: "b"},
	}, 100)

	want := []int{40, 100}
	if !slices.Equal(recorder.percents, want) {
		t.Fatalf("logged percents = %v, want %v", recorder.percents, want)
	}
}

func TestWriteNoProgressWithoutDuration(t *testing.T) {
	recorder := &progressRecorder{}
	w := NewWriter(slog.New(recorder), nil)

	writeAndRead(t, w, []Segment{
		{Start: 0, End: 2, Text: "a"},
	}, 0)

	if len(recorder.percents) != 0 {
		t.Errorf("logged percents = %v, want none", recorder.percents)
	}
}

func TestWriteLazyConsumption(t *testing.T) {
	// The writer must pull segments one at a time, not collect them first.
	consumed := 0
	seq := func(yield func(Segment) bool) {
		for i := 0; i < 3; i++ {
			consumed++
			if !yield(Segment{Start: float64(i), End: float64(i + 1), Text: "line"}) {
				return
			}
		}
	}

	w := NewWriter(nil, nil)
	path := filepath.Join(t.TempDir(), "out.srt")
	if err := w.Write(seq, path, "item-1", 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if consumed != 3 {
		t.Errorf("consumed %d segments, want 3", consumed)
	}
}
