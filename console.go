package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gitlab.com/gomidi/midi/v2"
)

var (
	ccStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	frameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	bytesStyle  = lipgloss.NewStyle().Bold(true)
	secondStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Printer writes the live translation trace. A nil or quiet Printer prints
// nothing.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

func NewPrinter(w io.Writer, quiet bool) *Printer {
	return &Printer{w: w, quiet: quiet}
}

func (p *Printer) enabled() bool {
	return p != nil && !p.quiet && p.w != nil
}

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}

// Header prints the column legend shown once listening starts.
func (p *Printer) Header() {
	if !p.enabled() {
		return
	}
	p.println("Listening for MIDI messages. Press Ctrl+C to quit.\n\n CC/Val | SysEx\n=======================")
}

// Translated prints one line per message produced for a controller event,
// the secondary of a dual write marked as such.
func (p *Printer) Translated(cc, value uint8, msgs []Message) {
	if !p.enabled() {
		return
	}
	for i, m := range msgs {
		var prefix string
		if i == 0 {
			prefix = ccStyle.Render(fmt.Sprintf("%03d", cc)) + "/" + valueStyle.Render(fmt.Sprintf("%03d", value)) + " | "
		} else {
			prefix = secondStyle.Render("2nd sysex:")
		}
		p.println(prefix + renderSysEx(m))
	}
}

// Forwarded prints a message that was passed through untouched.
func (p *Printer) Forwarded(msg midi.Message) {
	if !p.enabled() {
		return
	}
	p.println(mutedStyle.Render("Passing through: " + msg.String()))
}

// Dropped prints a diagnostic for an event that produced nothing.
func (p *Printer) Dropped(reason error) {
	if !p.enabled() {
		return
	}
	p.println(mutedStyle.Render(reason.Error()))
}

func renderSysEx(m Message) string {
	hex := make([]string, len(m))
	for i, b := range m {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	return frameStyle.Render("F0 ") + bytesStyle.Render(strings.Join(hex, " ")+" ") + frameStyle.Render("F7")
}

// Describe writes the controller map as a table. Native controllers are
// listed as pass-through.
func Describe(w io.Writer) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("CC", "Parameter", "Scope", "Param", "Mask", "Shape", "Range").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for cc := 0; cc < 128; cc++ {
		if name, ok := nativeControllers[uint8(cc)]; ok {
			t.Row(fmt.Sprint(cc), name, "native", "", "", "pass-through", "")
			continue
		}
		c, ok := LookupControl(uint8(cc))
		if !ok {
			continue
		}
		t.Row(
			fmt.Sprint(c.CC),
			c.Name,
			c.Scope().String(),
			describeParams(c),
			describeMasks(c),
			c.Shape.String(),
			describeRange(c),
		)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func describeParams(c *Control) string {
	var parts []string
	for _, f := range c.Fields() {
		parts = append(parts, fmt.Sprintf("0x%02X", f.Param))
	}
	return strings.Join(parts, "+")
}

func describeMasks(c *Control) string {
	var parts []string
	for _, f := range c.Fields() {
		parts = append(parts, fmt.Sprintf("0x%02X", f.Mask))
	}
	return strings.Join(parts, "+")
}

func describeRange(c *Control) string {
	switch c.Shape {
	case ShapeToggle:
		return "0/127"
	case ShapeSignedOffset:
		return "0..63 up, 64..127 down"
	case ShapeRelative:
		return fmt.Sprintf("64 = hold, stored %d..%d", c.Min, c.Max)
	case ShapeFreqDual:
		lo, _ := LookupFreq(uint8(c.Min))
		hi, _ := LookupFreq(uint8(c.Max))
		return fmt.Sprintf("%d..%d (x%.2f..x%.2f)", c.Min, c.Max, lo.Ratio(), hi.Ratio())
	}
	return fmt.Sprintf("%d..%d", c.Min, c.Max)
}
