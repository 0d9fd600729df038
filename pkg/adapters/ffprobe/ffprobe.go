// Package ffprobe inspects camera files with the ffprobe executable. It
// implements ports.MediaProber and ports.TimecodeReader.
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/user/camgrid/pkg/ports"
)

var (
	// ErrNoVideoStream is returned when a file has no video stream.
	ErrNoVideoStream = errors.New("ffprobe: no video stream")

	// ErrNoTimecode is returned when a file carries no timecode tag.
	ErrNoTimecode = errors.New("ffprobe: no timecode tag")
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int               `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	RFrameRate   string            `json:"r_frame_rate"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	NBFrames     string            `json:"nb_frames"`
	Duration     string            `json:"duration"`
	BitRate      string            `json:"bit_rate"`
	Tags         map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, stderr)
	}

	return Parse(output)
}

// Parse decodes an ffprobe JSON document.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), data...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// Video returns the first video stream.
func (r Result) Video() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	return nonNegative(parseFloat(r.Format.BitRate))
}

// FrameRate returns the stream's frame rate, preferring the real base rate.
func (s Stream) FrameRate() float64 {
	if rate := parseRational(s.RFrameRate); rate > 0 {
		return rate
	}
	return parseRational(s.AvgFrameRate)
}

// FrameCount returns the number of frames, estimated from the duration when
// the container does not store it.
func (s Stream) FrameCount(containerDuration float64) int64 {
	if n := nonNegative(parseFloat(s.NBFrames)); n > 0 {
		return n
	}
	duration := parseFloat(s.Duration)
	if !(duration > 0) {
		duration = containerDuration
	}
	if !(duration > 0) {
		return 0
	}
	return int64(math.Round(duration * s.FrameRate()))
}

// SourceInfo summarizes the first video stream.
func (r Result) SourceInfo() (ports.SourceInfo, error) {
	video, ok := r.Video()
	if !ok {
		return ports.SourceInfo{}, ErrNoVideoStream
	}
	bitRate := nonNegative(parseFloat(video.BitRate))
	if bitRate == 0 {
		bitRate = r.BitRate()
	}
	return ports.SourceInfo{
		Width:      video.Width,
		Height:     video.Height,
		FrameRate:  video.FrameRate(),
		FrameCount: video.FrameCount(r.DurationSeconds()),
		BitRate:    bitRate,
		Codec:      video.CodecName,
	}, nil
}

// Timecode returns the embedded timecode tag. Stream tags win over
// container tags.
func (r Result) Timecode() ports.TimecodeTag {
	var tag ports.TimecodeTag
	sets := []map[string]string{}
	if video, ok := r.Video(); ok {
		sets = append(sets, video.Tags)
	}
	sets = append(sets, r.Format.Tags)

	for _, tags := range sets {
		if tag.Timecode == "" {
			tag.Timecode = lookup(tags, "timecode")
		}
		if tag.Frequency == "" {
			tag.Frequency = lookup(tags, "timecode_frequency", "timecodefrequency")
		}
	}
	return tag
}

// Prober implements ports.MediaProber and ports.TimecodeReader.
type Prober struct {
	binary string
}

// New creates a prober running the given ffprobe binary.
func New(binary string) *Prober {
	return &Prober{binary: binary}
}

// Probe returns the stream parameters of path.
func (p *Prober) Probe(ctx context.Context, path string) (ports.SourceInfo, error) {
	result, err := Inspect(ctx, p.binary, path)
	if err != nil {
		return ports.SourceInfo{}, err
	}
	info, err := result.SourceInfo()
	if err != nil {
		return ports.SourceInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// ReadTimecode returns the raw timecode tags of path.
func (p *Prober) ReadTimecode(ctx context.Context, path string) (ports.TimecodeTag, error) {
	result, err := Inspect(ctx, p.binary, path)
	if err != nil {
		return ports.TimecodeTag{}, err
	}
	tag := result.Timecode()
	if tag.Timecode == "" {
		return tag, fmt.Errorf("%s: %w", path, ErrNoTimecode)
	}
	return tag, nil
}

var (
	_ ports.MediaProber    = (*Prober)(nil)
	_ ports.TimecodeReader = (*Prober)(nil)
)

func lookup(tags map[string]string, keys ...string) string {
	for k, v := range tags {
		for _, key := range keys {
			if strings.EqualFold(k, key) {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// parseRational parses "30000/1001" or "25". Invalid or zero-denominator
// values yield 0.
func parseRational(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	n := parseFloat(num)
	if !found {
		if math.IsNaN(n) || n < 0 {
			return 0
		}
		return n
	}
	d := parseFloat(den)
	if math.IsNaN(n) || math.IsNaN(d) || d <= 0 || n < 0 {
		return 0
	}
	return n / d
}

func nonNegative(v float64) int64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return int64(v)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
