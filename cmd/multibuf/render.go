package main

import (
	"fmt"
	"io"
	"strings"
)

// render prints the aggregate with a file:line gutter, one block per
// excerpt. Gutter line numbers are one-based for display; the manifest
// and the engine stay zero-based.
func render(w io.Writer, ws *workspace) {
	snap := ws.aggregate.Snapshot()

	for i, info := range snap.Excerpts() {
		if i > 0 {
			fmt.Fprintln(w, "--")
		}

		path := ws.files[info.Buffer]
		buf, ok := snap.BufferSnapshot(info.Buffer)
		if !ok {
			continue
		}
		firstLine := buf.OffsetToPoint(info.BufferRange.Start).Line

		text := strings.TrimSuffix(info.Text, "\n")
		for n, line := range strings.Split(text, "\n") {
			fmt.Fprintf(w, "%s:%d: %s\n", path, firstLine+uint32(n)+1, line)
		}
	}
}
