package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
)

func outPortNames() []string {
	outs := midi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

func inPortNames() []string {
	ins := midi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}

// selectOutPort finds the output by name fragment, or asks for its index
// when no fragment is configured.
func selectOutPort(nameFragment string, r *bufio.Reader) (int, error) {
	return selectPort("output port for the FB-01", nameFragment, outPortNames(), r, os.Stdout)
}

func selectInPort(nameFragment string, r *bufio.Reader) (int, error) {
	return selectPort("input port for the controller", nameFragment, inPortNames(), r, os.Stdout)
}

func selectPort(what, nameFragment string, names []string, r *bufio.Reader, w io.Writer) (int, error) {
	if nameFragment == "" {
		return promptPort(what, names, r, w)
	}
	if idx := matchPort(names, nameFragment); idx >= 0 {
		return idx, nil
	}
	return -1, fmt.Errorf("no %s matches %q among %d ports", what, nameFragment, len(names))
}

// matchPort returns the index of the first name containing fragment,
// ignoring case, or -1.
func matchPort(names []string, fragment string) int {
	fragment = strings.ToLower(fragment)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), fragment) {
			return i
		}
	}
	return -1
}

// promptPort lists names with their index and reads the chosen index from
// r, asking again until the answer is valid.
func promptPort(what string, names []string, r *bufio.Reader, w io.Writer) (int, error) {
	if len(names) == 0 {
		return -1, fmt.Errorf("no ports to choose the %s from", what)
	}
	for i, n := range names {
		fmt.Fprintf(w, "%d: %s\n", i, n)
	}

	for {
		fmt.Fprintf(w, "Select the %s: ", what)
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return -1, fmt.Errorf("no %s selected: %w", what, err)
		}
		idx, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && idx >= 0 && idx < len(names) {
			return idx, nil
		}
		fmt.Fprintf(w, "Invalid choice %q, enter a number between 0 and %d.\n", strings.TrimSpace(line), len(names)-1)
		if err == io.EOF {
			return -1, fmt.Errorf("no %s selected: %w", what, err)
		}
	}
}

func listPorts(w io.Writer) {
	fmt.Fprintln(w, "MIDI Inputs:")
	fmt.Fprint(w, midi.GetInPorts().String())
	fmt.Fprintln(w, "\nMIDI Outputs:")
	fmt.Fprint(w, midi.GetOutPorts().String())
}
