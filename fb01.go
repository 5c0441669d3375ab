package main

import (
	"fmt"
	"log"
	"os"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// FB01 is the output port the synthesizer listens on. Calls from the
// dispatcher and the MCP handlers are serialized by mu.
type FB01 struct {
	mu   sync.Mutex
	port drivers.Out
	send func(midi.Message) error
}

// OpenFB01 opens the output port at portIndex. The returned func closes the
// port and then the driver.
func OpenFB01(portIndex int) (*FB01, func(), error) {
	port, err := midi.OutPort(portIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("output port %d: %w", portIndex, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", port, err)
	}
	log.Printf("sending to FB-01 on %s", port)

	closeFB := func() {
		if err := port.Close(); err != nil {
			log.Printf("closing %s: %v", port, err)
		}
		midi.CloseDriver()
	}
	return &FB01{port: port, send: send}, closeFB, nil
}

// Send transmits msg to the FB-01.
func (f *FB01) Send(msg midi.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.send(msg)
}

func allNotesOff(channel uint8) midi.Message {
	return midi.ControlChange(channel, 123, 0)
}

// AllNotesOff silences every voice on channel.
func (f *FB01) AllNotesOff(channel uint8) error {
	return f.Send(allNotesOff(channel))
}

// dumpBytes writes msg one byte per line to stderr, for debugging what
// actually went over the wire.
func dumpBytes(msg []byte, label string) {
	fmt.Fprintf(os.Stderr, "Dumping %d bytes of %s:\n", len(msg), label)
	for i, b := range msg {
		fmt.Fprintf(os.Stderr, "%d 0x%02X\n", i, b)
	}
}
