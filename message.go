package main

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
)

const (
	yamahaID  = 0x43
	subStatus = 0x75

	systemAddress     = 0x10
	instrumentAddress = 0x18 // instrument 1; 0x19..0x1F for 2..8

	headerSize     = 5
	singleDataSize = headerSize + 1
	nibbleDataSize = headerSize + 2
)

// Message is an FB-01 parameter change without the F0/F7 framing:
//
//	43 75 <system channel> <address> <parameter> <data...>
type Message []byte

// addressFor picks the address byte for a scope and the event's channel.
// Channels 1-7 address instruments 2-8; 0 and 8-15 fall back to instrument 1.
func addressFor(scope Scope, channel uint8) byte {
	if scope == ScopeSystem {
		return systemAddress
	}
	if channel >= 1 && channel <= 7 {
		return instrumentAddress + channel
	}
	return instrumentAddress
}

// buildMessage assembles a parameter change from a full register byte.
// Voice registers travel as a low nibble then a high nibble.
func buildMessage(scope Scope, sysChannel, address, param, reg byte) Message {
	m := Message{yamahaID, subStatus, sysChannel, address, param}
	if scope == ScopeVoice {
		return append(m, reg&0x0F, reg>>4)
	}
	return append(m, reg)
}

func expectedSize(scope Scope) int {
	if scope == ScopeVoice {
		return nibbleDataSize
	}
	return singleDataSize
}

// Validate checks the length the scope dictates and that every byte fits
// inside a SysEx frame.
func (m Message) Validate(scope Scope) error {
	if want := expectedSize(scope); len(m) != want {
		return fmt.Errorf("%s message has %d bytes, want %d", scope, len(m), want)
	}
	if m[0] != yamahaID || m[1] != subStatus {
		return fmt.Errorf("bad header % X", []byte(m[:2]))
	}
	if ch := m.SystemChannel(); ch > 0x0F {
		return fmt.Errorf("system channel %d out of range", ch)
	}
	if addr := m.Address(); scope == ScopeSystem && addr != systemAddress ||
		scope != ScopeSystem && (addr < instrumentAddress || addr > instrumentAddress+7) {
		return fmt.Errorf("address 0x%02X is not valid for %s parameters", addr, scope)
	}
	for i, b := range m {
		if b > 0x7F {
			return fmt.Errorf("parameter 0x%02X: byte %d is 0x%02X, not a 7-bit data byte", m.Param(), i, b)
		}
	}
	return nil
}

func (m Message) SystemChannel() byte { return m[2] }

func (m Message) Address() byte { return m[3] }

func (m Message) Param() byte { return m[4] }

func (m Message) Data() []byte { return m[headerSize:] }

// Value reassembles the register byte carried by the message.
func (m Message) Value() byte {
	d := m.Data()
	if len(d) == 2 {
		return d[0]&0x0F | d[1]<<4
	}
	return d[0]
}

// MIDI frames the message as a SysEx.
func (m Message) MIDI() midi.Message {
	return midi.SysEx(m)
}

func (m Message) String() string {
	var sb strings.Builder
	sb.WriteString("F0")
	for _, b := range m {
		fmt.Fprintf(&sb, " %02X", b)
	}
	sb.WriteString(" F7")
	return sb.String()
}
