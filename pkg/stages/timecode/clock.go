// Package timecode implements the running timecode shown on merged output.
package timecode

import (
	"fmt"
	"math"
	"time"

	"github.com/user/camgrid/pkg/pipeline"
)

// MaxSynthesizedFrequency caps the tick frequency of a clock seeded without
// an embedded timecode.
const MaxSynthesizedFrequency = 30.0

// Seed is the starting state of a Clock.
type Seed struct {
	Time      time.Time // Date and time, second resolution
	Subframe  int
	Frequency float64
	// Reference is true when the seed came from an embedded timecode.
	// Only then is the subframe rendered.
	Reference bool
	// Source is the index of the source the seed was taken from.
	Source int
}

// SeedFrom selects the clock seed for a job. The first source (in input order)
// with an embedded timecode is the reference. Without one, the clock starts
// from the first source at subframe 0 with min(maxFrameRate, 30) ticks per second.
// day supplies the date; base is the start time used when no source carries a
// timecode.
func SeedFrom(sources []pipeline.SourceDescriptor, maxFrameRate float64, day, base time.Time) Seed {
	for i, s := range sources {
		if s.Timecode == nil {
			continue
		}
		freq := s.TimecodeFrequency
		if freq <= 0 {
			freq = pipeline.DefaultTimecodeFrequency
		}
		tc := s.Timecode
		return Seed{
			Time:      time.Date(day.Year(), day.Month(), day.Day(), tc.Hour, tc.Minute, tc.Second, 0, day.Location()),
			Subframe:  tc.Frame,
			Frequency: freq,
			Reference: true,
			Source:    i,
		}
	}

	return Seed{
		Time:      base.Truncate(time.Second),
		Frequency: math.Min(maxFrameRate, MaxSynthesizedFrequency),
	}
}

// Clock is a resampled subframe counter. It advances tickFrequency/outputRate
// subframes per output tick, carrying the fractional remainder, and rolls the
// seconds over when the subframe reaches the tick frequency.
type Clock struct {
	current   time.Time
	subframe  int
	acc       float64
	frequency float64
	step      float64
	reference bool
}

// NewClock creates a clock from a seed for an output running at outputRate.
func NewClock(seed Seed, outputRate float64) *Clock {
	step := 0.0
	if outputRate > 0 {
		step = seed.Frequency / outputRate
	}
	return &Clock{
		current:   seed.Time,
		subframe:  seed.Subframe,
		frequency: seed.Frequency,
		step:      step,
		reference: seed.Reference,
	}
}

// Advance moves the clock forward by one output tick.
func (c *Clock) Advance() {
	c.acc += c.step
	if c.acc >= 1 {
		c.subframe++
		c.acc -= 1
	}
	if float64(c.subframe) >= c.frequency {
		c.subframe = 0
		c.current = c.current.Add(time.Second)
	}
}

// String renders the overlay text: HH:MM:SS.FF with a reference timecode,
// HH:MM:SS otherwise.
func (c *Clock) String() string {
	hms := c.current.Format("15:04:05")
	if !c.reference {
		return hms
	}
	return fmt.Sprintf("%s.%02d", hms, c.subframe)
}

// Time returns the current time of day.
func (c *Clock) Time() time.Time { return c.current }

// Subframe returns the current subframe.
func (c *Clock) Subframe() int { return c.subframe }

// Frequency returns the subframes per second.
func (c *Clock) Frequency() float64 { return c.frequency }
