package ffmpegsink

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/user/camgrid/pkg/ports"
)

// ErrNoEncoderAvailable is returned when ffmpeg ships none of the known
// video encoders.
var ErrNoEncoderAvailable = errors.New("ffmpegsink: no encoder available")

// FallbackOrder is the order in which codecs are tried when the requested
// one has no encoder.
var FallbackOrder = []ports.Codec{ports.CodecH264, ports.CodecAV1}

// Selection describes the encoder chosen for a requested codec.
type Selection struct {
	Requested    ports.Codec
	Codec        ports.Codec
	Encoder      string
	FallbackUsed bool
}

// Select picks an encoder for requested among the available ones. When the
// requested codec has none, the codecs of FallbackOrder are tried.
func Select(requested ports.Codec, available map[string]bool) (Selection, error) {
	if _, ok := Encoders[requested]; !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnsupportedCodec, requested)
	}

	order := append([]ports.Codec{requested}, FallbackOrder...)
	for _, codec := range order {
		for _, encoder := range Encoders[codec] {
			if available[encoder] {
				return Selection{
					Requested:    requested,
					Codec:        codec,
					Encoder:      encoder,
					FallbackUsed: codec != requested,
				}, nil
			}
		}
	}
	return Selection{Requested: requested}, ErrNoEncoderAvailable
}

// SelectFor lists the encoders of the ffmpeg at ffmpegPath, picks one for
// requested and configures o to use it. A fallback is logged as a warning.
func (o *Opener) SelectFor(ctx context.Context, requested ports.Codec) (Selection, error) {
	available, err := ListEncoders(ctx, o.ffmpegPath)
	if err != nil {
		return Selection{}, err
	}
	sel, err := Select(requested, available)
	if err != nil {
		return sel, err
	}
	if sel.FallbackUsed {
		o.logger.Warn("No %s encoder in %s, falling back to %s (%s)", requested, o.ffmpegPath, sel.Codec, sel.Encoder)
	}
	o.UseEncoder(sel.Codec, sel.Encoder)
	return sel, nil
}

// ListEncoders returns the names of the video encoders compiled into the
// ffmpeg at ffmpegPath.
func ListEncoders(ctx context.Context, ffmpegPath string) (map[string]bool, error) {
	out, err := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("list encoders: %w", err)
	}
	return ParseEncoders(out), nil
}

// ParseEncoders parses the output of "ffmpeg -encoders". Only video
// encoders, whose capability flags start with V, are returned.
func ParseEncoders(out []byte) map[string]bool {
	encoders := make(map[string]bool)
	listing := false

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			// The legend ends with a dashed separator line.
			listing = strings.HasPrefix(line, "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && strings.HasPrefix(fields[0], "V") {
			encoders[fields[1]] = true
		}
	}
	return encoders
}
