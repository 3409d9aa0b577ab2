package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"sdslc/internal/buildpipeline"
)

// PlainSink prints one line per finished permutation. It is used when the
// output is not a terminal.
type PlainSink struct {
	mu sync.Mutex
	w  io.Writer
	// width of the name column
	width int
}

// NewPlainSink aligns names to the widest of targets.
func NewPlainSink(w io.Writer, targets []string) *PlainSink {
	width := 0
	for _, t := range targets {
		width = max(width, runewidth.StringWidth(t))
	}
	return &PlainSink{w: w, width: width}
}

func (s *PlainSink) OnEvent(ev buildpipeline.Event) {
	if ev.Target == "" {
		return
	}
	var status string
	switch ev.Status {
	case buildpipeline.StatusDone:
		status = "ok"
	case buildpipeline.StatusError:
		status = "FAILED"
	default:
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s  %-6s %s\n", runewidth.FillRight(ev.Target, s.width), status, ev.Elapsed.Round(time.Millisecond))
}
