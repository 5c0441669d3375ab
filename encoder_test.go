package main

import (
	"bytes"
	"sync"
	"testing"

	"github.com/pkg/errors"
)

func encodeOne(t *testing.T, e *Encoder, cc, value, channel uint8) []Message {
	t.Helper()
	msgs, err := e.Encode(cc, value, channel)
	if err != nil {
		t.Fatalf("Encode(%d, %d, %d): %v", cc, value, channel, err)
	}
	return msgs
}

func wantMessages(t *testing.T, got []Message, want ...[]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d messages %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("message %d = % X, want % X", i+1, []byte(got[i]), want[i])
		}
	}
}

func TestEncodeAlgorithmKeepsFeedback(t *testing.T) {
	e := NewEncoder(nil)

	msgs := encodeOne(t, e, 24, 5, 0)
	wantMessages(t, msgs, []byte{0x43, 0x75, 0x00, 0x18, 0x4C, 0x05, 0x00})

	encodeOne(t, e, 25, 3, 0) // feedback 3
	msgs = encodeOne(t, e, 24, 5, 0)
	if got := msgs[0].Value(); got != 0x1D {
		t.Errorf("algorithm 5 with feedback 3 = 0x%02X, want 0x1D", got)
	}
}

func TestEncodeMemoryProtectTwice(t *testing.T) {
	e := NewEncoder(nil)
	want := []byte{0x43, 0x75, 0x00, 0x10, 0x21, 0x01}

	wantMessages(t, encodeOne(t, e, 0, 127, 0), want)
	wantMessages(t, encodeOne(t, e, 0, 127, 0), want)
}

func TestEncodeFrequencyDual(t *testing.T) {
	e := NewEncoder(nil)
	encodeOne(t, e, 45, 17, 2) // op1 D2R 17

	msgs := encodeOne(t, e, 39, 10, 2)
	wantMessages(t, msgs,
		[]byte{0x43, 0x75, 0x00, 0x1A, 0x6B, 0x03, 0x00},
		[]byte{0x43, 0x75, 0x00, 0x1A, 0x6E, 0x01, 0x01},
	)
}

func TestEncodeMasterDetune(t *testing.T) {
	e := NewEncoder(nil)

	wantMessages(t, encodeOne(t, e, 113, 70, 0), []byte{0x43, 0x75, 0x00, 0x10, 0x23, 0x06})
	wantMessages(t, encodeOne(t, e, 113, 10, 0), []byte{0x43, 0x75, 0x00, 0x10, 0x23, 0x4A})
}

func TestEncodeSystemChannelUsesOldChannel(t *testing.T) {
	e := NewEncoder(nil)

	wantMessages(t, encodeOne(t, e, 112, 5, 0), []byte{0x43, 0x75, 0x00, 0x10, 0x20, 0x05})
	wantMessages(t, encodeOne(t, e, 0, 127, 0), []byte{0x43, 0x75, 0x05, 0x10, 0x21, 0x01})
}

func TestEncodeInstrumentAddress(t *testing.T) {
	tests := []struct {
		channel uint8
		want    byte
	}{
		{0, 0x18},
		{1, 0x19},
		{4, 0x1C},
		{7, 0x1F},
		{8, 0x18},
		{15, 0x18},
	}
	e := NewEncoder(nil)
	for _, tt := range tests {
		for _, cc := range []uint8{24, 107} {
			msgs := encodeOne(t, e, cc, 0, tt.channel)
			if got := msgs[0].Address(); got != tt.want {
				t.Errorf("cc %d channel %d address 0x%02X, want 0x%02X", cc, tt.channel, got, tt.want)
			}
		}
		if got := encodeOne(t, e, 125, 0, tt.channel)[0].Address(); got != 0x10 {
			t.Errorf("system cc on channel %d address 0x%02X, want 0x10", tt.channel, got)
		}
	}
}

func TestEncodeOutOfRangeStillSends(t *testing.T) {
	e := NewEncoder(nil)
	encodeOne(t, e, 24, 4, 0)

	msgs := encodeOne(t, e, 24, 9, 0)
	wantMessages(t, msgs, []byte{0x43, 0x75, 0x00, 0x18, 0x4C, 0x04, 0x00})
}

func TestEncodeUnsupportedController(t *testing.T) {
	e := NewEncoder(nil)
	before := e.State()

	for _, cc := range []uint8{1, 7, 64, 114, 123} {
		msgs, err := e.Encode(cc, 100, 0)
		if !errors.Is(err, ErrUnsupportedController) {
			t.Errorf("cc %d: err = %v, want ErrUnsupportedController", cc, err)
		}
		if msgs != nil {
			t.Errorf("cc %d: got messages %v", cc, msgs)
		}
	}

	after := e.State()
	if before.System != after.System || before.Instrument != after.Instrument || before.Config != after.Config {
		t.Errorf("unsupported controllers changed the store")
	}
}

// A config name char can be pushed past 127 by a relative move. It is sent
// as a single byte, so the message cannot be framed and is dropped, and the
// char then refuses every further move.
func TestEncodeDropsUnframeableConfigName(t *testing.T) {
	e := NewEncoder(nil) // char 1 is 'I' = 73

	msgs, err := e.Encode(6, 127, 0)
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("got %v, want the message dropped", msgs)
	}
	if got := e.fieldValue(cfgField(cfgNameParam, 0xFF)); got != 136 {
		t.Fatalf("char = %d, want 136", got)
	}

	for _, v := range []uint8{0, 65} {
		if _, err := e.Encode(6, v, 0); !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("value %d: err = %v, want ErrMalformedMessage", v, err)
		}
	}
	if got := e.fieldValue(cfgField(cfgNameParam, 0xFF)); got != 136 {
		t.Errorf("char = %d, want it stuck at 136", got)
	}
}

func TestEncodeMessageShape(t *testing.T) {
	e := NewEncoder(nil)
	for _, c := range Controls() {
		for _, v := range []uint8{0, 1, 63, 64, 65, 127} {
			msgs, err := e.Encode(c.CC, v, 3)
			if err != nil && !errors.Is(err, ErrMalformedMessage) {
				t.Fatalf("cc %d value %d: %v", c.CC, v, err)
			}
			if c.Shape == ShapeFreqDual && err == nil && len(msgs) != 2 {
				t.Errorf("cc %d value %d: %d messages, want 2", c.CC, v, len(msgs))
			}
			for _, m := range msgs {
				if err := m.Validate(c.Scope()); err != nil {
					t.Errorf("cc %d value %d: %v", c.CC, v, err)
				}
				if m[0] != 0x43 || m[1] != 0x75 {
					t.Errorf("cc %d value %d: header % X", c.CC, v, []byte(m[:2]))
				}
			}
		}
	}
}

func TestEncodeConcurrentCallers(t *testing.T) {
	e := NewEncoder(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = e.Encode(20+uint8(i%4), 127, uint8(i))
				_ = e.State()
			}
		}(i)
	}
	wg.Wait()

	if got := e.fieldValue(voiceField(voiceOpEnableParam, 0xFF)); got != 0x78 {
		t.Errorf("operator enable = 0x%02X, want 0x78", got)
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name  string
		msg   Message
		scope Scope
		ok    bool
	}{
		{"system", Message{0x43, 0x75, 0x00, 0x10, 0x21, 0x01}, ScopeSystem, true},
		{"voice", Message{0x43, 0x75, 0x00, 0x18, 0x4C, 0x05, 0x00}, ScopeVoice, true},
		{"voice too short", Message{0x43, 0x75, 0x00, 0x18, 0x4C, 0x05}, ScopeVoice, false},
		{"instrument too long", Message{0x43, 0x75, 0x00, 0x18, 0x08, 0x05, 0x00}, ScopeInstrument, false},
		{"high bit", Message{0x43, 0x75, 0x00, 0x10, 0x00, 0x88}, ScopeSystem, false},
		{"wrong maker", Message{0x41, 0x75, 0x00, 0x10, 0x00, 0x01}, ScopeSystem, false},
		{"instrument 8", Message{0x43, 0x75, 0x0F, 0x1F, 0x08, 0x05}, ScopeInstrument, true},
		{"system channel 16", Message{0x43, 0x75, 0x10, 0x10, 0x21, 0x01}, ScopeSystem, false},
		{"system at instrument address", Message{0x43, 0x75, 0x00, 0x18, 0x21, 0x01}, ScopeSystem, false},
		{"voice at system address", Message{0x43, 0x75, 0x00, 0x10, 0x4C, 0x05, 0x00}, ScopeVoice, false},
		{"config past instrument 8", Message{0x43, 0x75, 0x00, 0x20, 0x00, 0x49}, ScopeConfig, false},
	}
	for _, tt := range tests {
		err := tt.msg.Validate(tt.scope)
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestMessageString(t *testing.T) {
	m := buildMessage(ScopeVoice, 0, 0x18, 0x48, 0xC8)
	if got, want := m.String(), "F0 43 75 00 18 48 08 0C F7"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := m.Value(); got != 0xC8 {
		t.Errorf("Value() = 0x%02X, want 0xC8", got)
	}
	if got := m.MIDI().Bytes(); len(got) != len(m)+2 || got[0] != 0xF0 || got[len(got)-1] != 0xF7 {
		t.Errorf("MIDI() = % X", got)
	}
}
