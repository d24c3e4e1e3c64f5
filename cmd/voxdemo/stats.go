package main

import (
	"fmt"
	"strings"

	"golang.design/x/clipboard"
)

// demoStats summarizes one assembled frame for the status line and for
// clipboard export.
type demoStats struct {
	Frame     uint64
	Leaves    int
	Triangles int
	Vertices  int
}

func (s demoStats) String() string {
	return fmt.Sprintf("frame=%d leaves=%d triangles=%d vertices=%d", s.Frame, s.Leaves, s.Triangles, s.Vertices)
}

// printStatus writes a single-line, carriage-return-anchored status line,
// padded to width so it fully overwrites the previous line under raw mode
// (echo is off, so nothing but this write touches the terminal row).
func printStatus(stats demoStats, width int) {
	line := stats.String()
	if len(line) < width {
		line += strings.Repeat(" ", width-len(line))
	} else if len(line) > width {
		line = line[:width]
	}
	fmt.Printf("\r%s", line)
}

// copyStatsToClipboard exports the current frame's stats as text, if the
// clipboard was initialized successfully at startup.
func copyStatsToClipboard(ok bool, stats demoStats) {
	if !ok {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(stats.String()+"\n"))
}
