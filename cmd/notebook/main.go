// Command notebook is the CLI entry point for the MIDI looper/notebook:
// it parses the -inN/-outN port-selection flags, loads the persisted
// port/trigger configuration, wires the realtime engine to the system's
// MIDI ports, and drives a small interactive console for manual save,
// reset, and status commands. On interrupt it exports the notebook once
// and exits.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/barmassimo/midi-notebook/internal/config"
	"github.com/barmassimo/midi-notebook/internal/console"
	"github.com/barmassimo/midi-notebook/internal/engine"
	"github.com/barmassimo/midi-notebook/internal/export"
	"github.com/barmassimo/midi-notebook/midi"
)

// configFileName is the persisted INI file's path, relative to the
// working directory the process is launched from.
const configFileName = "midi_notebook.ini"

var (
	inFlag  = regexp.MustCompile(`^-in(\d+)$`)
	outFlag = regexp.MustCompile(`^-out(\d+)$`)
)

// parsePortFlags recognizes the "-inN"/"-outN" CLI surface: the port
// index is part of the flag token itself, not a separate argument, so it
// can't be expressed with the stdlib flag package's fixed flag names.
// Unrecognized tokens are ignored rather than rejected.
func parsePortFlags(args []string) (inIndex, outIndex *int) {
	for _, arg := range args {
		if m := inFlag.FindStringSubmatch(arg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				inIndex = &n
			}
			continue
		}
		if m := outFlag.FindStringSubmatch(arg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				outIndex = &n
			}
		}
	}
	return inIndex, outIndex
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func main() {
	progName := filepath.Base(os.Args[0])
	cliIn, cliOut := parsePortFlags(os.Args[1:])

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg := engine.DefaultConfig()
	persisted, err := config.Load(configFileName, cfg.ToggleSignatures)
	if err != nil {
		sugar.Warnw("failed to load persisted configuration", "error", err)
	}
	cfg.ToggleSignatures = persisted.Triggers

	sink := console.StdoutSink{}
	driver := midi.NewDriver()
	exporter := export.NewSMFExporter(sink)

	eng := engine.New(cfg, driver, exporter, sink, sugar)

	inIndex := cliIn
	if inIndex == nil {
		inIndex = persisted.InputPort
	}
	outIndex := cliOut
	if outIndex == nil {
		outIndex = persisted.OutputPort
	}
	eng.SetInputPort(inIndex)
	eng.SetOutputPort(outIndex)

	if err := eng.StartRecording(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting MIDI capture: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	eng.StartAutosave()

	lines, err := eng.PortSummary(progName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing MIDI ports: %v\n", err)
	}
	for _, line := range lines {
		fmt.Println(line)
	}

	persistCurrentPorts := func() {
		p := config.Persisted{InputPort: inIndex, OutputPort: outIndex, Triggers: cfg.ToggleSignatures}
		if err := config.Save(configFileName, p); err != nil {
			sugar.Warnw("failed to persist configuration", "error", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nSaving notebook and shutting down...")
		if err := eng.Save(); err != nil {
			sugar.Warnw("save on shutdown failed", "error", err)
		}
		persistCurrentPorts()
		eng.Close()
		os.Exit(0)
	}()

	fmt.Println("\nRecording started. Type 'help' for commands, 'quit' to exit.")
	fmt.Println()

	cmdHandler := console.New(eng, progName)

	if isTerminal() {
		rl, err := readline.New("> ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating readline: %v\n", err)
			os.Exit(1)
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err != nil {
				break
			}
			line = strings.TrimSpace(line)
			if strings.ToLower(line) == "quit" {
				break
			}
			if err := cmdHandler.ProcessCommand(line); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.ToLower(line) == "quit" {
				break
			}
			if err := cmdHandler.ProcessCommand(line); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}
	}

	fmt.Println("Saving notebook before exit...")
	if err := eng.Save(); err != nil {
		sugar.Warnw("save on exit failed", "error", err)
	}
	persistCurrentPorts()
}
