package main

import (
	"fmt"
	"strings"

	"github.com/barometric/ctf-fs/ctf/ctfsink"
	"github.com/barometric/ctf-fs/ctf/ctfsrc"
)

// joinLines joins a slice of pre-formatted diagnostic lines for display on
// exit.
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// recentDiagnosticLines formats the tail of both components' diagnostic
// histories for display when a run fails partway through.
func recentDiagnosticLines(src *ctfsrc.Component, sink *ctfsink.Component) []string {
	var lines []string
	for _, d := range src.RecentDiagnostics(10) {
		lines = append(lines, fmt.Sprintf("source: %s: %s", d.When.Format("15:04:05"), d.Message))
	}
	for _, d := range sink.RecentDiagnostics(10) {
		lines = append(lines, fmt.Sprintf("sink: %s: %s", d.When.Format("15:04:05"), d.Message))
	}
	return lines
}
