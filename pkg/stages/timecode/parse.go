package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/camgrid/pkg/pipeline"
)

var (
	// ErrEmpty is returned when a timecode or frequency tag is blank.
	ErrEmpty = errors.New("timecode: empty value")

	// ErrMalformed is returned when a tag cannot be parsed.
	ErrMalformed = errors.New("timecode: malformed value")
)

// Parse parses an embedded timecode of the form HH:MM:SS:FF. Fewer fields are
// accepted and fill from the hour down; drop-frame separators (';' or '.')
// before the frame field are accepted too.
func Parse(s string) (pipeline.Timecode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pipeline.Timecode{}, ErrEmpty
	}

	parts := strings.Split(strings.NewReplacer(";", ":", ".", ":").Replace(s), ":")
	if len(parts) > 4 {
		return pipeline.Timecode{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	var fields [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if p == "" || err != nil || v < 0 {
			return pipeline.Timecode{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		fields[i] = v
	}

	tc := pipeline.Timecode{Hour: fields[0], Minute: fields[1], Second: fields[2], Frame: fields[3]}
	if tc.Hour > 23 || tc.Minute > 59 || tc.Second > 59 {
		return pipeline.Timecode{}, fmt.Errorf("%w: %q out of range", ErrMalformed, s)
	}
	return tc, nil
}

// ParseFrequency parses a timecode frequency such as "25", "29.97" or
// "30000/1001". The result is always positive.
func ParseFrequency(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	var f float64
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		f = n / d
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		f = v
	}

	if f <= 0 {
		return 0, fmt.Errorf("%w: %q is not positive", ErrMalformed, s)
	}
	return f, nil
}
