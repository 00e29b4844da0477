// Package midiinfo summarizes Standard MIDI Files. It reads with an
// independent decoder so that it can double as a check on what the writer
// produced.
package midiinfo

import (
	"bytes"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

const defaultTempo = 120.0

// TrackSummary describes one track chunk.
type TrackSummary struct {
	Name     string `json:"name"`
	Notes    int    `json:"notes"`
	Channels []int  `json:"channels"`
	EndTick  uint32 `json:"end_tick"`
}

// Summary describes a whole file.
type Summary struct {
	TicksPerQuarter int            `json:"ticks_per_quarter"`
	TempoBPM        float64        `json:"tempo_bpm"`
	Numerator       int            `json:"time_signature_numerator"`
	Denominator     int            `json:"time_signature_denominator"`
	Tracks          []TrackSummary `json:"tracks"`
	Notes           int            `json:"notes"`
	TotalTicks      uint32         `json:"total_ticks"`
	Seconds         float64        `json:"seconds"`
}

// Inspect reads and summarizes the file at path.
func Inspect(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.SerializationIO("read", path, err)
	}
	return InspectBytes(data)
}

// InspectBytes summarizes an in-memory file.
func InspectBytes(data []byte) (*Summary, error) {
	file, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Serialization("decode midi: %v", err)
	}
	ticks, ok := file.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errs.Serialization("unsupported time format %v", file.TimeFormat)
	}

	s := &Summary{
		TicksPerQuarter: int(uint16(ticks)),
		TempoBPM:        defaultTempo,
		Numerator:       4,
		Denominator:     4,
	}
	tempoSeen := false

	for _, track := range file.Tracks {
		var (
			ts       TrackSummary
			tick     uint32
			channels = map[int]bool{}
		)
		for _, ev := range track {
			tick += ev.Delta

			var (
				bpm          float64
				num, den     uint8
				ch, key, vel uint8
			)
			switch {
			case ev.Message.GetMetaTrackName(&ts.Name):
			case ev.Message.GetMetaTempo(&bpm):
				// the first tempo wins; the writer only emits one
				if !tempoSeen {
					s.TempoBPM = bpm
					tempoSeen = true
				}
			case ev.Message.GetMetaMeter(&num, &den):
				s.Numerator, s.Denominator = int(num), int(den)
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				if vel > 0 {
					ts.Notes++
					channels[int(ch)] = true
				}
			}
		}
		ts.EndTick = tick
		for ch := range channels {
			ts.Channels = append(ts.Channels, ch)
		}
		sort.Ints(ts.Channels)

		s.Notes += ts.Notes
		if tick > s.TotalTicks {
			s.TotalTicks = tick
		}
		s.Tracks = append(s.Tracks, ts)
	}

	if s.TicksPerQuarter > 0 && s.TempoBPM > 0 {
		s.Seconds = float64(s.TotalTicks) / float64(s.TicksPerQuarter) * 60 / s.TempoBPM
	}
	return s, nil
}

// Track returns the summary of the first track with the given name.
func (s *Summary) Track(name string) (TrackSummary, bool) {
	for _, t := range s.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return TrackSummary{}, false
}
