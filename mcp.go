package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

// tools holds what the MCP handlers share with the rest of the program.
type tools struct {
	enc     *Encoder
	out     Sender
	channel uint8
	timing  noteTiming
}

func newMCPServer(t *tools) *server.MCPServer {
	s := server.NewMCPServer(
		"FB-01 CC MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	describeTool := mcp.NewTool("fb01_describe-controls",
		mcp.WithDescription("Returns the table of MIDI controllers the bridge translates into Yamaha FB-01 parameter changes."),
	)
	s.AddTool(describeTool, t.describeControls)

	sendCCTool := mcp.NewTool("fb01_send-cc",
		mcp.WithDescription("Applies a controller change as if it came from the MIDI input and sends the resulting FB-01 SysEx."),
		mcp.WithNumber("controller", mcp.Required(), mcp.Description("Controller number (0-127)."), mcp.Min(0), mcp.Max(127)),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("Controller value (0-127)."), mcp.Min(0), mcp.Max(127)),
		mcp.WithNumber("channel", mcp.Description("MIDI channel (1-16). Channels 2-8 address instruments 2-8, all others instrument 1."), mcp.Min(1), mcp.Max(16)),
	)
	s.AddTool(sendCCTool, t.sendCC)

	stateTool := mcp.NewTool("fb01_get-state",
		mcp.WithDescription("Returns the register values last sent to the FB-01 as JSON."),
	)
	s.AddTool(stateTool, t.getState)

	testNotesTool := mcp.NewTool("fb01_play-test-notes",
		mcp.WithDescription("Plays test notes on the FB-01."),
	)
	s.AddTool(testNotesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp]Handling play test notes request.")
		if err := playTestNotes(t.out, t.channel); err != nil {
			return nil, fmt.Errorf("failed to play test notes: %v", err)
		}
		return mcp.NewToolResultText("Test notes played successfully."), nil
	})

	minor7Tool := mcp.NewTool("fb01_play-minor7",
		mcp.WithDescription("Plays a C minor 7 chord on the FB-01 for two seconds."),
	)
	s.AddTool(minor7Tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp]Handling minor 7 chord request.")
		if err := playMinor7Chord(t.out, t.channel, 2*time.Second); err != nil {
			return nil, fmt.Errorf("failed to play minor 7 chord: %v", err)
		}
		return mcp.NewToolResultText("C minor 7 chord played successfully."), nil
	})

	playNotesTool := mcp.NewTool("fb01_play-notes",
		mcp.WithDescription("Plays a sequence of notes on the FB-01."),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Notes such as \"C4 E4 G4 r C5\". Use # or b for accidentals, r or rest for a pause.")),
	)
	s.AddTool(playNotesTool, t.playNotes)

	allNotesOffTool := mcp.NewTool("fb01_all-notes-off",
		mcp.WithDescription("Sends All Notes Off to the FB-01."),
	)
	s.AddTool(allNotesOffTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp]Handling all notes off request.")
		if err := t.out.Send(allNotesOff(t.channel)); err != nil {
			return nil, fmt.Errorf("failed to send all notes off: %v", err)
		}
		return mcp.NewToolResultText("All Notes Off sent."), nil
	})

	return s
}

func runMCP(t *tools) error {
	log.Println("Starting FB-01 MCP server...")
	return server.ServeStdio(newMCPServer(t))
}

func (t *tools) describeControls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling describe controls request.")

	var buf bytes.Buffer
	if err := Describe(&buf); err != nil {
		return nil, fmt.Errorf("failed to describe controls: %v", err)
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (t *tools) sendCC(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling send cc request.")

	controller, err := request.RequireInt("controller")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireInt("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	channel := request.GetInt("channel", 1)

	if controller < 0 || controller > 127 || value < 0 || value > 127 {
		return mcp.NewToolResultError("controller and value must be in range 0-127"), nil
	}
	if channel < 1 || channel > 16 {
		return mcp.NewToolResultError("channel must be in range 1-16"), nil
	}
	if IsNative(uint8(controller)) {
		return mcp.NewToolResultError(fmt.Sprintf("controller %d is understood by the FB-01 directly and is not translated", controller)), nil
	}

	msgs, err := t.enc.Encode(uint8(controller), uint8(value), uint8(channel-1))
	if errors.Is(err, ErrUnsupportedController) {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	for _, m := range msgs {
		if sendErr := t.out.Send(m.MIDI()); sendErr != nil {
			return nil, fmt.Errorf("failed to send %s: %v", m, sendErr)
		}
		fmt.Fprintln(&sb, m.String())
	}
	if err != nil {
		fmt.Fprintf(&sb, "dropped: %v\n", err)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *tools) getState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling get state request.")

	state := t.enc.State()
	asJson, err := json.MarshalIndent(&state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state to JSON: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func (t *tools) playNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling play notes request.")

	notes, err := request.RequireString("notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := parseNotes(notes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := playNotesFromText(t.out, t.channel, notes, t.timing); err != nil {
		return nil, fmt.Errorf("failed to play notes: %v", err)
	}
	return mcp.NewToolResultText("Notes played successfully."), nil
}
