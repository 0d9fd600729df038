package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Translator translates a label. The identity function is used by default.
type Translator func(key string) string

// TableFormatter renders a summary as a table, for the terminal or as
// Markdown.
type TableFormatter struct {
	translate Translator
	version   string
	markdown  bool
}

// Option configures a TableFormatter.
type Option func(*TableFormatter)

// WithTranslator sets the label translator.
func WithTranslator(t Translator) Option {
	return func(f *TableFormatter) {
		if t != nil {
			f.translate = t
		}
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) Option {
	return func(f *TableFormatter) {
		f.version = version
	}
}

// NewTableFormatter creates a formatter rendering rounded box tables.
func NewTableFormatter(opts ...Option) *TableFormatter {
	f := &TableFormatter{translate: func(key string) string { return key }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewMarkdownFormatter creates a formatter rendering Markdown.
func NewMarkdownFormatter(opts ...Option) *TableFormatter {
	f := NewTableFormatter(opts...)
	f.markdown = true
	return f
}

// Format implements Formatter.
func (f *TableFormatter) Format(summary *Summary) string {
	tr := f.translate

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{
		tr("Recording"), tr("Status"), tr("Cameras"), tr("Grid"), tr("Canvas"),
		tr("Rate"), tr("Bit rate"), tr("Frames"), tr("Timecode"), tr("Size"), tr("Time"),
	})

	for _, j := range summary.Jobs {
		status := tr(string(j.Status))
		if j.Err != "" {
			status = fmt.Sprintf("%s: %s", status, j.Err)
		}
		cameras := fmt.Sprintf("%d", j.Cameras)
		if j.Dropped > 0 {
			cameras = fmt.Sprintf("%d (-%d)", j.Cameras, j.Dropped)
		}
		if j.Status != StatusMerged {
			if j.Cameras == 0 && j.Dropped == 0 {
				cameras = ""
			}
			tw.AppendRow(table.Row{j.Name, status, cameras, "", "", "", "", "", "", "", ""})
			continue
		}

		tw.AppendRow(table.Row{
			j.Name,
			status,
			cameras,
			fmt.Sprintf("%dx%d", j.Grid.Columns, j.Grid.Rows),
			fmt.Sprintf("%dx%d", j.Canvas.Width, j.Canvas.Height),
			fmt.Sprintf("%.2f", j.FrameRate),
			FormatBitRate(j.BitRate),
			humanize.Comma(j.Frames),
			fmt.Sprintf("%s - %s", j.Start, j.End),
			FormatBytes(j.FileSize),
			j.Elapsed.Round(time.Second).String(),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 10, Align: text.AlignRight},
		{Number: 11, Align: text.AlignRight},
	})

	footer := fmt.Sprintf("%s: %d, %s: %d, %s: %d, %s: %d",
		tr("merged"), summary.Count(StatusMerged),
		tr("skipped"), summary.Count(StatusSkipped),
		tr("no cameras"), summary.Count(StatusNoCameras),
		tr("failed"), summary.Count(StatusFailed))

	var sb strings.Builder
	if f.markdown {
		sb.WriteString("# " + tr("Merge Summary") + "\n\n")
		if summary.Root != "" {
			sb.WriteString(fmt.Sprintf("- %s: `%s`\n", tr("Root"), summary.Root))
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", tr("Generated"), summary.GeneratedAt.Format(time.RFC3339)))
		if f.version != "" {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", tr("Version"), f.version))
		}
		sb.WriteString("\n")
		sb.WriteString(tw.RenderMarkdown())
		sb.WriteString("\n\n" + footer + "\n")
		return sb.String()
	}

	sb.WriteString(tw.Render())
	sb.WriteString("\n" + footer)
	if summary.Elapsed > 0 {
		sb.WriteString(fmt.Sprintf(" (%s, %d %s)", summary.Elapsed.Round(time.Second), summary.Workers, tr("workers")))
	}
	sb.WriteString("\n")
	return sb.String()
}

// FormatBytes renders a file size, or "-" when unknown.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

// FormatBitRate renders a bit rate in SI units, or "-" when unknown.
func FormatBitRate(bps int64) string {
	if bps <= 0 {
		return "-"
	}
	return humanize.SI(float64(bps), "bps")
}
