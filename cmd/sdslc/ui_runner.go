package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"sdslc/internal/buildpipeline"
	"sdslc/internal/ui"
)

type buildOutcome struct {
	result *buildpipeline.Result
	err    error
}

// runBuildWithUI runs the build while a Bubble Tea program renders its
// events to w.
func runBuildWithUI(ctx context.Context, w io.Writer, title string, names []string, req buildpipeline.Request) (*buildpipeline.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		req.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Build(ctx, req)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(w))
	_, uiErr := program.Run()
	// модель могла выйти раньше, сборка не должна зависнуть на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
