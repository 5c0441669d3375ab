package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/xlab/closer"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	defer closer.Close()

	cfg, args, saved, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("invalid settings: %v", err)
	}
	if saved {
		log.Println("Settings saved.")
	}

	cmd := "run"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "list":
		listPorts(os.Stdout)
		return
	case "map":
		if err := Describe(os.Stdout); err != nil {
			log.Fatalf("failed to print controller map: %v", err)
		}
		return
	case "run", "play", "mcp":
	default:
		log.Fatalf("unknown command %q", cmd)
	}

	// The MCP transport owns stdin, so the output has to be named up front.
	if cmd == "mcp" && cfg.OutputPort == "" {
		log.Fatalf("mcp needs the FB-01 output port, set -out or outputPort in the config")
	}

	stdin := bufio.NewReader(os.Stdin)

	outIdx, err := selectOutPort(cfg.OutputPort, stdin)
	if err != nil {
		log.Fatalf("could not find FB-01 MIDI out port: %v", err)
	}

	fb, closeOut, err := OpenFB01(outIdx)
	if err != nil {
		log.Fatalf("failed to open FB-01 output: %v", err)
	}
	closer.Bind(func() {
		closeOut()
		log.Println("MIDI ports closed.")
	})

	enc := NewEncoder(NewParameterStore())

	switch cmd {
	case "play":
		if len(args) > 1 {
			err = playNotesFromText(fb, cfg.MIDIChannel(), strings.Join(args[1:], " "), defaultTiming)
		} else {
			err = playTestNotes(fb, cfg.MIDIChannel())
		}
		if err != nil {
			closer.Fatalln("failed to play notes:", err)
		}

	case "mcp":
		closer.Bind(func() {
			if err := fb.AllNotesOff(cfg.MIDIChannel()); err != nil {
				log.Println("failed to send all notes off:", err)
			}
		})
		t := &tools{
			enc:     enc,
			out:     fb,
			channel: cfg.MIDIChannel(),
			timing:  defaultTiming,
		}
		if err := runMCP(t); err != nil {
			log.Printf("Server error: %v", err)
		}

	case "run":
		listen(cfg, fb, enc, stdin)
	}
}

// listen translates the controller input until Ctrl+C or a send failure.
func listen(cfg *Config, fb *FB01, enc *Encoder, stdin *bufio.Reader) {
	inIdx, err := selectInPort(cfg.InputPort, stdin)
	if err != nil {
		closer.Fatalln("could not find controller MIDI in port:", err)
	}
	in := midi.GetInPorts()[inIdx]

	trace := NewPrinter(os.Stdout, cfg.Quiet)
	disp := NewDispatcher(enc, fb, trace)
	disp.dump = cfg.Dump

	stop, err := disp.Listen(in)
	if err != nil {
		closer.Fatalln(err)
	}
	log.Printf("Translating %s -> FB-01", in.String())

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		err := disp.Run(ctx)
		close(finished)
		if err != nil {
			log.Printf("dispatcher stopped: %v", err)
			closer.Close()
		}
	}()

	closer.Bind(func() {
		stop()
		cancel()
		<-finished
	})

	trace.Header()
	closer.Hold()
}
