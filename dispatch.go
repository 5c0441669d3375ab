package main

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Sender is where translated and forwarded messages go.
type Sender interface {
	Send(msg midi.Message) error
}

// Dispatcher routes incoming MIDI to the output: native controllers and
// non-CC messages are forwarded, everything else goes through the Encoder.
type Dispatcher struct {
	enc    *Encoder
	out    Sender
	trace  *Printer
	dump   bool
	events chan midi.Message
}

func NewDispatcher(enc *Encoder, out Sender, trace *Printer) *Dispatcher {
	return &Dispatcher{
		enc:    enc,
		out:    out,
		trace:  trace,
		events: make(chan midi.Message, 256),
	}
}

// sysExBufferSize fits a full FB-01 voice bank dump.
const sysExBufferSize = 8192

// Listen feeds messages arriving on in into the dispatcher's queue. SysEx
// and timing messages are let through so they can be forwarded too; active
// sensing stays filtered. The returned func stops listening.
func (d *Dispatcher) Listen(in drivers.In) (func(), error) {
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		d.Enqueue(msg)
	}, midi.UseSysEx(), midi.SysExBufferSize(sysExBufferSize), midi.UseTimeCode())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", in.String(), err)
	}
	return stop, nil
}

// Enqueue hands msg to Run. It blocks while the queue is full so that no
// event is lost or reordered.
func (d *Dispatcher) Enqueue(msg midi.Message) {
	d.events <- append(midi.Message(nil), msg...)
}

// Run handles queued messages one at a time until ctx is done or sending
// fails. On the way out it sends All Notes Off.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return d.shutdown()
		case msg := <-d.events:
			if err := d.Handle(msg); err != nil {
				_ = d.shutdown()
				return err
			}
		}
	}
}

func (d *Dispatcher) shutdown() error {
	if err := d.out.Send(allNotesOff(0)); err != nil {
		return fmt.Errorf("failed to send all notes off: %w", err)
	}
	log.Println("All Notes Off message sent.")
	return nil
}

// Handle processes a single message. Only transport failures are returned;
// unsupported controllers and malformed messages are logged and skipped.
func (d *Dispatcher) Handle(msg midi.Message) error {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) || IsNative(cc) {
		d.trace.Forwarded(msg)
		return d.send(msg)
	}

	msgs, err := d.enc.Encode(cc, val, ch)
	switch {
	case errors.Is(err, ErrUnsupportedController):
		d.trace.Dropped(err)
		return nil
	case err != nil:
		log.Printf("dropped message: %v", err)
		d.trace.Dropped(err)
	}

	d.trace.Translated(cc, val, msgs)
	for _, m := range msgs {
		if err := d.send(m.MIDI()); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) send(msg midi.Message) error {
	if d.dump {
		dumpBytes(msg.Bytes(), "outgoing message")
	}
	if err := d.out.Send(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.String(), err)
	}
	return nil
}
