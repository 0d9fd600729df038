package summarizer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/camgrid/pkg/mocks"
	"github.com/user/camgrid/pkg/pipeline"
)

func sampleResult() pipeline.MergeResult {
	return pipeline.MergeResult{
		OutputPath:     "/data/take1.avi",
		FramesWritten:  12000,
		Sources:        make([]pipeline.SourceDescriptor, 3),
		DroppedSources: []string{"/data/take1_Miqus_4.avi"},
		Grid:           pipeline.GridPlan{Columns: 3, Rows: 1},
		Canvas:         pipeline.Dimension{Width: 5760, Height: 1088},
		FrameRate:      30,
		BitRate:        2_000_000,
		StartTimecode:  "01:02:03.05",
		EndTimecode:    "01:08:43.04",
	}
}

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder(t *testing.T) {
	summary := NewBuilder().
		WithRun("/data", 2, time.Minute).
		WithMerged("take1", sampleResult(), 1<<20, 30*time.Second).
		WithJob("take2", "/data/take2.avi", StatusSkipped, nil).
		WithJob("take3", "/data/take3.avi", StatusFailed, errors.New("no usable sources")).
		WithFailed("take4", "/data/take4.avi", pipeline.MergeResult{
			Sources:        make([]pipeline.SourceDescriptor, 2),
			DroppedSources: []string{"/data/take4_Miqus_3.avi"},
			FramesWritten:  40,
		}, errors.New("broken pipe"), time.Second).
		Build()

	if summary.Root != "/data" || summary.Workers != 2 {
		t.Errorf("unexpected run info %+v", summary)
	}
	if len(summary.Jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(summary.Jobs))
	}
	failed := summary.Jobs[3]
	if failed.Status != StatusFailed || failed.Cameras != 2 || failed.Dropped != 1 || failed.Frames != 40 {
		t.Errorf("unexpected failed job %+v", failed)
	}
	if failed.Err != "broken pipe" {
		t.Errorf("expected error text, got %q", failed.Err)
	}
	merged := summary.Jobs[0]
	if merged.Cameras != 3 || merged.Dropped != 1 || merged.Frames != 12000 {
		t.Errorf("unexpected merged job %+v", merged)
	}
	if summary.Jobs[2].Err != "no usable sources" {
		t.Errorf("expected error text, got %q", summary.Jobs[2].Err)
	}
	if summary.Count(StatusSkipped) != 1 || summary.Count(StatusMerged) != 1 {
		t.Error("unexpected status counts")
	}
}

func TestTableFormatter_Format(t *testing.T) {
	summary := NewBuilder().
		WithRun("/data", 1, 90*time.Second).
		WithMerged("take1", sampleResult(), 5_000_000, 80*time.Second).
		WithJob("take2", "/data/take2.avi", StatusSkipped, nil).
		Build()

	result := NewTableFormatter().Format(summary)

	checks := []string{
		"take1",
		"3 (-1)",
		"3x1",
		"5760x1088",
		"30.00",
		"2 Mbps",
		"12,000",
		"01:02:03.05 - 01:08:43.04",
		"5.0 MB",
		"take2",
		"skipped",
		"merged: 1, skipped: 1, no cameras: 0, failed: 0",
		"╭",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
}

func TestTableFormatter_FailedRow(t *testing.T) {
	summary := NewBuilder().
		WithFailed("take4", "/data/take4.avi", pipeline.MergeResult{
			Sources:        make([]pipeline.SourceDescriptor, 2),
			DroppedSources: []string{"/data/take4_Miqus_3.avi"},
		}, errors.New("no frames to merge"), time.Second).
		WithJob("take5", "/data/take5.avi", StatusNoCameras, nil).
		Build()

	result := NewTableFormatter().Format(summary)

	for _, want := range []string{"failed: no frames to merge", "2 (-1)", "failed: 1"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output:\n%s", want, result)
		}
	}
	if strings.Contains(result, "0 (-0)") {
		t.Errorf("unexpected camera count on empty row:\n%s", result)
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	summary := NewBuilder().
		WithRun("/data", 1, 0).
		WithJob("take3", "/data/take3.avi", StatusFailed, errors.New("broken pipe")).
		Build()

	result := NewMarkdownFormatter(WithVersion("1.2.3")).Format(summary)

	for _, check := range []string{"# Merge Summary", "`/data`", "1.2.3", "| take3 |", "failed: broken pipe"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
}

func TestFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Merge Summary": "結合サマリー",
			"Recording":     "記録",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(NewSummary())

	if !strings.Contains(result, "結合サマリー") {
		t.Error("expected translated title")
	}
	if !strings.Contains(result, "記録") {
		t.Error("expected translated header")
	}
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{FormatBytes(0), "-"},
		{FormatBytes(1000), "1.0 kB"},
		{FormatBitRate(0), "-"},
		{FormatBitRate(8_000_000), "8 Mbps"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(fs, FormatFunc(func(s *Summary) string { return "hello" }))

	path := filepath.Join("reports", "summary.md")
	if err := w.Write(path, NewSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if ok, _ := fs.Exists("reports"); !ok {
		t.Error("expected report directory to be created")
	}
	data, err := fs.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("unexpected file content %q, %v", data, err)
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(string, []byte) error { return errors.New("disk full") }
	w := NewWriter(fs, NewMarkdownFormatter())

	if err := w.Write("summary.md", NewSummary()); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}

func TestWriter_Print(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(mocks.NewFileSystem(), FormatFunc(func(s *Summary) string { return "table\n" }))

	if err := w.Print(&sb, NewSummary()); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if sb.String() != "table\n" {
		t.Errorf("unexpected output %q", sb.String())
	}
}
