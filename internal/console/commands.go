package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/barmassimo/midi-notebook/internal/loop"
)

// Controller is the slice of Engine the console drives: manual loop
// toggling, a one-shot save, a full reset, and the port summary listing.
// Kept as an interface so commands_test.go can exercise the dispatch
// logic without a real Engine.
type Controller interface {
	Toggle(n int) error
	Save() error
	Reset()
	PortSummary(progName string) ([]string, error)
	LoopStatus(n int) string
}

// Handler parses and executes a single console command line against the
// looper's small command surface.
type Handler struct {
	engine   Controller
	progName string
}

// New creates a command handler bound to engine.
func New(engine Controller, progName string) *Handler {
	return &Handler{engine: engine, progName: progName}
}

// ProcessCommand parses and executes a single command line. An empty line
// shows the current loop status.
func (h *Handler) ProcessCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		return h.handleStatus(nil)
	}

	parts := strings.Fields(cmdLine)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "toggle":
		return h.handleToggle(parts)
	case "save":
		return h.handleSave(parts)
	case "reset":
		return h.handleReset(parts)
	case "ports":
		return h.handlePorts(parts)
	case "status":
		return h.handleStatus(parts)
	case "help":
		return h.handleHelp(parts)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// handleToggle: toggle <slot 0-3>
func (h *Handler) handleToggle(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: toggle <slot> (e.g., 'toggle 0')")
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 || n >= loop.NumLoops {
		return fmt.Errorf("invalid slot: %s (must be 0-%d)", parts[1], loop.NumLoops-1)
	}
	if err := h.engine.Toggle(n); err != nil {
		return err
	}
	fmt.Printf("Slot %d: %s\n", n, h.engine.LoopStatus(n))
	return nil
}

// handleSave: save
func (h *Handler) handleSave(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: save")
	}
	if err := h.engine.Save(); err != nil {
		return fmt.Errorf("failed to save notebook: %w", err)
	}
	fmt.Println("Saved notebook to MIDI file")
	return nil
}

// handleReset: reset
func (h *Handler) handleReset(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: reset")
	}
	h.engine.Reset()
	fmt.Println("Reset all loops and cleared the notebook")
	return nil
}

// handlePorts: ports
func (h *Handler) handlePorts(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: ports")
	}
	lines, err := h.engine.PortSummary(h.progName)
	if err != nil {
		return fmt.Errorf("failed to list ports: %w", err)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// handleStatus: status (or bare enter)
func (h *Handler) handleStatus(parts []string) error {
	if len(parts) > 1 {
		return fmt.Errorf("usage: status")
	}
	for n := 0; n < loop.NumLoops; n++ {
		label := "slave"
		if n == loop.MasterIndex {
			label = "master"
		}
		status := h.engine.LoopStatus(n)
		if status == "" {
			status = "clean"
		}
		fmt.Printf("slot %d (%s): %s\n", n, label, status)
	}
	return nil
}

// handleHelp: help
func (h *Handler) handleHelp(parts []string) error {
	helpText := `Available commands:
  toggle <slot>  Toggle loop slot 0-3 (e.g., 'toggle 0')
  save           Export the notebook log to a MIDI file now
  reset          Clean every loop and clear the notebook log
  ports          List MIDI input/output ports and the current selection
  status         Show every loop slot's state
  help           Show this help message
  quit           Exit the program
  <enter>        Show loop status (same as 'status')`
	fmt.Println(helpText)
	return nil
}

// ReadLoop reads commands from reader until "quit" or EOF.
func (h *Handler) ReadLoop(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)

	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(strings.ToLower(line)) == "quit" {
			return nil
		}

		if err := h.ProcessCommand(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}
