package summarizer

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/user/camgrid/pkg/ports"
)

// Formatter renders a Summary as text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a function to Formatter.
type FormatFunc func(summary *Summary) string

// Format implements Formatter.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// Writer emits formatted summaries to the terminal or to report files.
type Writer struct {
	fs        ports.FileSystem
	formatter Formatter
}

// NewWriter creates a Writer storing reports through fs.
func NewWriter(fs ports.FileSystem, formatter Formatter) *Writer {
	return &Writer{fs: fs, formatter: formatter}
}

// Print writes the formatted summary to w.
func (w *Writer) Print(out io.Writer, summary *Summary) error {
	_, err := io.WriteString(out, w.formatter.Format(summary))
	return err
}

// Write stores the formatted summary at path, creating the report directory
// when missing.
func (w *Writer) Write(path string, summary *Summary) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := w.fs.WriteFile(path, []byte(w.formatter.Format(summary))); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
