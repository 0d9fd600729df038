// Package mp4probe reads stream parameters of MP4 and QuickTime files from
// the container boxes, without starting an external process.
package mp4probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/camgrid/pkg/ports"
)

var (
	// ErrNoVideoTrack is returned when the movie has no video track.
	ErrNoVideoTrack = errors.New("mp4probe: no video track")

	// ErrFragmented is returned for fragmented files, whose sample tables
	// live in the fragments.
	ErrFragmented = errors.New("mp4probe: fragmented file")
)

// Extensions handled by the prober. Other files go to the fallback.
var Extensions = []string{".mp4", ".m4v", ".mov"}

// Prober implements ports.MediaProber for MP4 family containers.
type Prober struct {
	fallback ports.MediaProber
	logger   ports.Logger
}

// New creates a prober. Files it cannot handle are passed to fallback when
// it is not nil.
func New(fallback ports.MediaProber, logger ports.Logger) *Prober {
	return &Prober{fallback: fallback, logger: logger.WithComponent("mp4probe")}
}

// Probe returns the stream parameters of path.
func (p *Prober) Probe(ctx context.Context, path string) (ports.SourceInfo, error) {
	if !handles(path) {
		return p.delegate(ctx, path, nil)
	}

	info, err := ProbeFile(path)
	if err != nil {
		p.logger.Debug("Container probe of %s failed: %v", path, err)
		return p.delegate(ctx, path, err)
	}
	return info, nil
}

func (p *Prober) delegate(ctx context.Context, path string, cause error) (ports.SourceInfo, error) {
	if p.fallback == nil {
		if cause == nil {
			cause = fmt.Errorf("unsupported container %s", filepath.Ext(path))
		}
		return ports.SourceInfo{}, fmt.Errorf("probe %s: %w", path, cause)
	}
	return p.fallback.Probe(ctx, path)
}

// ProbeFile reads the movie header of an MP4/MOV file.
func ProbeFile(path string) (ports.SourceInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.SourceInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return ports.SourceInfo{}, fmt.Errorf("decode mp4: %w", err)
	}
	if mp4File.IsFragmented() {
		return ports.SourceInfo{}, ErrFragmented
	}
	if mp4File.Moov == nil {
		return ports.SourceInfo{}, ErrNoVideoTrack
	}

	for _, trak := range mp4File.Moov.Traks {
		if isVideo(trak) {
			return TrackInfo(trak)
		}
	}
	return ports.SourceInfo{}, ErrNoVideoTrack
}

// TrackInfo derives the stream parameters of a progressive video track.
func TrackInfo(trak *mp4.TrakBox) (ports.SourceInfo, error) {
	if trak.Tkhd == nil || trak.Mdia == nil || trak.Mdia.Mdhd == nil ||
		trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return ports.SourceInfo{}, fmt.Errorf("%w: incomplete track", ErrNoVideoTrack)
	}
	stbl := trak.Mdia.Minf.Stbl
	timescale := float64(trak.Mdia.Mdhd.Timescale)
	duration := float64(trak.Mdia.Mdhd.Duration)

	info := ports.SourceInfo{
		Width:  int(uint32(trak.Tkhd.Width) >> 16),
		Height: int(uint32(trak.Tkhd.Height) >> 16),
		Codec:  TrackCodec(trak),
	}

	var totalBytes uint64
	if stbl.Stsz != nil {
		info.FrameCount = int64(stbl.Stsz.SampleNumber)
		if stbl.Stsz.SampleUniformSize > 0 {
			totalBytes = uint64(stbl.Stsz.SampleUniformSize) * uint64(stbl.Stsz.SampleNumber)
		} else {
			for _, size := range stbl.Stsz.SampleSize {
				totalBytes += uint64(size)
			}
		}
	}

	// A constant sample delta gives the exact rate; otherwise average.
	if stbl.Stts != nil && len(stbl.Stts.SampleTimeDelta) == 1 && stbl.Stts.SampleTimeDelta[0] > 0 {
		info.FrameRate = timescale / float64(stbl.Stts.SampleTimeDelta[0])
	} else if duration > 0 {
		info.FrameRate = float64(info.FrameCount) * timescale / duration
	}

	if duration > 0 && timescale > 0 {
		info.BitRate = int64(float64(totalBytes*8) / (duration / timescale))
	}
	return info, nil
}

// TrackCodec names the codec of the track's first sample entry, using
// ffprobe's codec names. Unknown entries yield "".
func TrackCodec(trak *mp4.TrakBox) string {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ""
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "hvc1", "hev1":
			return "hevc"
		case "av01":
			return "av1"
		case "mp4v":
			return "mpeg4"
		case "jpeg", "mjpa", "mjpb":
			return "mjpeg"
		}
	}
	return ""
}

func isVideo(trak *mp4.TrakBox) bool {
	return trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide"
}

func handles(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

var _ ports.MediaProber = (*Prober)(nil)
