// Package console formats the monitor display and drives the looper's
// interactive/batch command console: manual save, reset, loop toggling,
// and port summary.
package console

import (
	"fmt"

	"github.com/barmassimo/midi-notebook/internal/event"
)

// ColumnWidth is the fixed width of each of the four per-slot columns in
// the monitor display.
const ColumnWidth = 19

// StdoutSink is the default message sink: it prints each monitor line to
// stdout. It implements internal/engine.MessageSink.
type StdoutSink struct{}

func (StdoutSink) WriteMessage(line string) {
	fmt.Println(line)
}

// NumColumns is the number of loop slots the monitor display reserves a
// column for.
const NumColumns = 4

// FormatMonitorLine renders one monitor-mode line: four 19-character
// columns, one per loop slot. The message text lands in the column named
// by slot (when slot is in 0..NumColumns-1); a recording-source message is
// prefixed with '*', a loopback (replayed) message with a space.
func FormatMonitorLine(msg event.Message, loopback bool, slot int) string {
	prefix := "*"
	if loopback {
		prefix = " "
	}

	text := fmt.Sprintf("%s%s ch%d %3d %3d", prefix, msg.Type(), msg.Channel(), msg.Data1, msg.Data2)

	line := make([]byte, 0, NumColumns*ColumnWidth)
	for col := 0; col < NumColumns; col++ {
		cell := ""
		if col == slot {
			cell = text
		}
		line = append(line, padColumn(cell)...)
	}
	return string(line)
}

func padColumn(s string) string {
	if len(s) >= ColumnWidth {
		return s[:ColumnWidth]
	}
	pad := make([]byte, ColumnWidth-len(s))
	for i := range pad {
		pad[i] = ' '
	}
	return s + string(pad)
}
