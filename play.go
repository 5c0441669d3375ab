package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gitlab.com/gomidi/midi/v2"
)

// noteTiming controls how long notes sound and how long rests last.
type noteTiming struct {
	Length time.Duration
	Gap    time.Duration
	Rest   time.Duration
}

var defaultTiming = noteTiming{
	Length: 300 * time.Millisecond,
	Gap:    60 * time.Millisecond,
	Rest:   360 * time.Millisecond,
}

// step is one parsed token: a note, or a rest when rest is set.
type step struct {
	note uint8
	rest bool
}

func playNote(out Sender, channel, note uint8, length time.Duration) error {
	if err := out.Send(midi.NoteOn(channel, note, 100)); err != nil {
		return fmt.Errorf("note on failed for %d: %w", note, err)
	}
	time.Sleep(length)
	if err := out.Send(midi.NoteOff(channel, note)); err != nil {
		return fmt.Errorf("note off failed for %d: %w", note, err)
	}
	return nil
}

// playTestNotes plays C4, E4 and G4 one after another.
func playTestNotes(out Sender, channel uint8) error {
	for _, n := range []uint8{midi.C(4), midi.E(4), midi.G(4)} {
		if err := playNote(out, channel, n, 200*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// playMinor7Chord holds C minor 7 for hold, then releases it.
func playMinor7Chord(out Sender, channel uint8, hold time.Duration) error {
	root := midi.C(4)
	chord := []uint8{root, root + 3, root + 7, root + 10}

	for _, n := range chord {
		if err := out.Send(midi.NoteOn(channel, n, 100)); err != nil {
			return fmt.Errorf("note on failed for %d: %w", n, err)
		}
	}

	time.Sleep(hold)

	for _, n := range chord {
		if err := out.Send(midi.NoteOff(channel, n)); err != nil {
			return fmt.Errorf("note off failed for %d: %w", n, err)
		}
	}

	return nil
}

// parseNotes splits text on whitespace, commas, semicolons and bars and
// parses every token. Nothing is played if any token is invalid.
func parseNotes(text string) ([]step, error) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '|'
	})
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no notes provided")
	}

	steps := make([]step, 0, len(tokens))
	for _, tok := range tokens {
		n, isRest, err := parseNoteToken(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q: %w", tok, err)
		}
		steps = append(steps, step{note: n, rest: isRest})
	}
	return steps, nil
}

// playNotesFromText plays notes such as "C4 Eb4 r G#4"; "r" or "rest" is
// a pause.
func playNotesFromText(out Sender, channel uint8, text string, timing noteTiming) error {
	steps, err := parseNotes(text)
	if err != nil {
		return err
	}

	for _, s := range steps {
		if s.rest {
			time.Sleep(timing.Rest)
			continue
		}
		if err := playNote(out, channel, s.note, timing.Length); err != nil {
			return err
		}
		time.Sleep(timing.Gap)
	}
	return nil
}

// parseNoteToken reads a note name with optional accidental and octave,
// C4 being middle C (60).
func parseNoteToken(tok string) (uint8, bool, error) {
	t := strings.TrimSpace(tok)
	if t == "" {
		return 0, false, fmt.Errorf("empty token")
	}

	if strings.EqualFold(t, "r") || strings.EqualFold(t, "rest") {
		return 0, true, nil
	}

	if len(t) < 2 {
		return 0, false, fmt.Errorf("too short")
	}

	semitone, ok := noteLetters[unicode.ToUpper(rune(t[0]))]
	if !ok {
		return 0, false, fmt.Errorf("invalid note letter %q", t[:1])
	}

	rest := t[1:]
	switch rest[0] {
	case '#':
		semitone++
		rest = rest[1:]
	case 'b', 'B':
		semitone--
		rest = rest[1:]
	}

	if rest == "" {
		return 0, false, fmt.Errorf("missing octave")
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false, fmt.Errorf("invalid octave: %w", err)
	}

	n := 12*(octave+1) + semitone
	if n < 0 || n > 127 {
		return 0, false, fmt.Errorf("MIDI note out of range: %d", n)
	}

	return uint8(n), false, nil
}

var noteLetters = map[rune]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}
