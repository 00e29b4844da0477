// Package smf writes Standard MIDI Files.
//
// A Writer collects timestamped events per track in memory and serializes them
// as a format 1 file in one step. Track 0 is the control track: tempo and time
// signature meta events are always emitted there. Events may be added in any
// order; serialization sorts them by tick with a fixed tie-break so identical
// input always produces identical bytes.
package smf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

const (
	// DefaultTicksPerQuarter is the division used by the composer.
	DefaultTicksPerQuarter = 480

	// DrumChannel is the General MIDI percussion channel (channel 10, zero based).
	DrumChannel = 9

	// MaxTick is the largest delta representable in a four byte VLQ.
	MaxTick = 0x0FFFFFFF

	noteOffVelocity = 64
)

// Meta event types.
const (
	metaTrackName     = 0x03
	metaEndOfTrack    = 0x2F
	metaTempo         = 0x51
	metaTimeSignature = 0x58
)

// priority orders events that share a tick. Meta and control events come
// before channel voice events, and note-offs before note-ons so a repeated
// pitch is released before it is struck again.
type priority uint8

const (
	prioTrackName priority = iota
	prioTempo
	prioTimeSignature
	prioProgramChange
	prioNoteOff
	prioNoteOn
)

type event struct {
	tick uint32
	prio priority
	seq  int
	data []byte
}

type track struct {
	name   string
	events []event
}

// Writer accumulates tracks and events for a single MIDI file.
type Writer struct {
	ticksPerQuarter  uint16
	microsPerQuarter uint32
	numerator        uint8
	denominatorPow   uint8
	tracks           []*track
	endTick          uint32
	seq              int
}

// NewWriter returns an empty writer at 120 bpm in 4/4.
func NewWriter(ticksPerQuarter int) (*Writer, error) {
	if ticksPerQuarter < 1 || ticksPerQuarter > 0x7FFF {
		return nil, &RangeError{Field: "ticks per quarter", Value: ticksPerQuarter, Min: 1, Max: 0x7FFF}
	}
	return &Writer{
		ticksPerQuarter:  uint16(ticksPerQuarter),
		microsPerQuarter: 500000,
		numerator:        4,
		denominatorPow:   2,
	}, nil
}

// TicksPerQuarter returns the file division.
func (w *Writer) TicksPerQuarter() int {
	return int(w.ticksPerQuarter)
}

// TrackCount returns the number of tracks created so far.
func (w *Writer) TrackCount() int {
	return len(w.tracks)
}

// EventCount returns the number of channel events added to a track.
func (w *Writer) EventCount(id int) int {
	if id < 0 || id >= len(w.tracks) {
		return 0
	}
	return len(w.tracks[id].events)
}

// SetTempo sets the global tempo written to the control track.
func (w *Writer) SetTempo(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return errs.Serialization("tempo must be positive, got %v", bpm)
	}
	micros := math.Round(60000000 / bpm)
	if micros < 1 || micros > 0xFFFFFF {
		return errs.Serialization("tempo %v bpm does not fit a 24-bit microseconds value", bpm)
	}
	w.microsPerQuarter = uint32(micros)
	return nil
}

// SetTimeSignature sets the meter written to the control track. The
// denominator must be a power of two.
func (w *Writer) SetTimeSignature(numerator, denominator int) error {
	if numerator < 1 || numerator > 255 {
		return &RangeError{Field: "time signature numerator", Value: numerator, Min: 1, Max: 255}
	}
	pow := -1
	for p := 0; p <= 7; p++ {
		if 1<<p == denominator {
			pow = p
			break
		}
	}
	if pow < 0 {
		return errs.Serialization("time signature denominator %d is not a power of two in [1, 128]", denominator)
	}
	w.numerator = uint8(numerator)
	w.denominatorPow = uint8(pow)
	return nil
}

// NewTrack appends an empty track and returns its index.
func (w *Writer) NewTrack(name string) int {
	w.tracks = append(w.tracks, &track{name: name})
	return len(w.tracks) - 1
}

// ExtendTo makes every track end no earlier than tick.
func (w *Writer) ExtendTo(tick int) error {
	if err := checkRange("tick", tick, 0, MaxTick); err != nil {
		return err
	}
	if uint32(tick) > w.endTick {
		w.endTick = uint32(tick)
	}
	return nil
}

// AddNoteOn schedules a note-on. Velocity 0 is rejected; use AddNoteOff.
func (w *Writer) AddNoteOn(id, tick, channel, note, velocity int) error {
	if err := w.checkVoice(id, tick, channel, note); err != nil {
		return err
	}
	if err := checkRange("velocity", velocity, 1, 127); err != nil {
		return err
	}
	w.add(id, tick, prioNoteOn, gomidi.NoteOn(uint8(channel), uint8(note), uint8(velocity)))
	return nil
}

// AddNoteOff schedules a note-off with the default release velocity.
func (w *Writer) AddNoteOff(id, tick, channel, note int) error {
	if err := w.checkVoice(id, tick, channel, note); err != nil {
		return err
	}
	w.add(id, tick, prioNoteOff, gomidi.NoteOffVelocity(uint8(channel), uint8(note), noteOffVelocity))
	return nil
}

// AddProgramChange schedules a program change.
func (w *Writer) AddProgramChange(id, tick, channel, program int) error {
	if err := w.checkVoice(id, tick, channel, program); err != nil {
		return err
	}
	w.add(id, tick, prioProgramChange, gomidi.ProgramChange(uint8(channel), uint8(program)))
	return nil
}

// Note schedules a note-on at tick and the matching note-off duration ticks later.
func (w *Writer) Note(id, tick, duration, channel, note, velocity int) error {
	if err := checkRange("duration", duration, 1, MaxTick); err != nil {
		return err
	}
	if err := checkRange("note-off tick", tick+duration, 0, MaxTick); err != nil {
		return err
	}
	if err := w.AddNoteOn(id, tick, channel, note, velocity); err != nil {
		return err
	}
	return w.AddNoteOff(id, tick+duration, channel, note)
}

func (w *Writer) checkVoice(id, tick, channel, value int) error {
	if err := checkRange("track", id, 0, len(w.tracks)-1); err != nil {
		return err
	}
	if err := checkRange("tick", tick, 0, MaxTick); err != nil {
		return err
	}
	if err := checkRange("channel", channel, 0, 15); err != nil {
		return err
	}
	return checkRange("data byte", value, 0, 127)
}

func (w *Writer) add(id, tick int, prio priority, msg gomidi.Message) {
	w.seq++
	w.tracks[id].events = append(w.tracks[id].events, event{
		tick: uint32(tick),
		prio: prio,
		seq:  w.seq,
		data: []byte(msg),
	})
}

// Bytes serializes the file as format 1.
func (w *Writer) Bytes() ([]byte, error) {
	if len(w.tracks) == 0 {
		return nil, errs.Serialization("file has no tracks")
	}
	var buf bytes.Buffer
	writeHeader(&buf, 1, len(w.tracks), w.ticksPerQuarter)
	for i, t := range w.tracks {
		writeChunk(&buf, "MTrk", w.encodeTrack(t, i == 0))
	}
	return buf.Bytes(), nil
}

// WriteTo writes the serialized file to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	data, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("%w: failed to write midi data: %w", errs.ErrSerialization, err)
	}
	return int64(n), nil
}

// Write serializes the file and atomically replaces path with it.
func (w *Writer) Write(path string) error {
	data, err := w.Bytes()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func (w *Writer) controlEvents() []event {
	tempo := []byte{
		byte(w.microsPerQuarter >> 16),
		byte(w.microsPerQuarter >> 8),
		byte(w.microsPerQuarter),
	}
	timeSig := []byte{w.numerator, w.denominatorPow, 0x18, 0x08}
	return []event{
		{prio: prioTempo, data: metaEvent(metaTempo, tempo)},
		{prio: prioTimeSignature, data: metaEvent(metaTimeSignature, timeSig)},
	}
}

func (w *Writer) encodeTrack(t *track, control bool) []byte {
	events := make([]event, 0, len(t.events)+3)
	if t.name != "" {
		events = append(events, event{prio: prioTrackName, data: metaEvent(metaTrackName, []byte(t.name))})
	}
	if control {
		events = append(events, w.controlEvents()...)
	}
	events = append(events, t.events...)
	sortEvents(events)

	var body bytes.Buffer
	var last uint32
	for _, ev := range events {
		writeVarLen(&body, ev.tick-last)
		body.Write(ev.data)
		last = ev.tick
	}
	end := last
	if w.endTick > end {
		end = w.endTick
	}
	writeVarLen(&body, end-last)
	body.Write(metaEvent(metaEndOfTrack, nil))
	return body.Bytes()
}

func sortEvents(events []event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		if a.prio != b.prio {
			return a.prio < b.prio
		}
		return a.seq < b.seq
	})
}

func metaEvent(kind byte, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0xFF)
	buf.WriteByte(kind)
	writeVarLen(&buf, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, format, tracks int, division uint16) {
	var hdr [6]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(format))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(tracks))
	binary.BigEndian.PutUint16(hdr[4:6], division)
	writeChunk(buf, "MThd", hdr[:])
}

func writeChunk(buf *bytes.Buffer, id string, body []byte) {
	buf.WriteString(id)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(body)))
	buf.Write(size[:])
	buf.Write(body)
}

// writeVarLen encodes v as a MIDI variable-length quantity: seven bits per
// byte, most significant group first, continuation bit set on all but the last.
func writeVarLen(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	for v >>= 7; v > 0 && i > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
	}
	buf.Write(tmp[i:])
}

// RangeError reports a value that cannot be represented in the file.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s %d out of range [%d, %d]", errs.ErrSerialization, e.Field, e.Value, e.Min, e.Max)
}

// Unwrap lets errors.Is match errs.ErrSerialization.
func (e *RangeError) Unwrap() error {
	return errs.ErrSerialization
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}
