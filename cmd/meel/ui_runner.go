package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"meel/internal/driver"
	"meel/internal/source"
	"meel/internal/ui"
)

type checkOutcome struct {
	fileSet *source.FileSet
	results []driver.CheckResult
	err     error
}

func runCheckWithUI(ctx context.Context, title, path string, files []string, opts driver.CheckOptions) (*source.FileSet, []driver.CheckResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		fs, results, err := driver.CheckPath(ctx, path, optsCopy)
		outcomeCh <- checkOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// дочитываем события, иначе проверка встанет на полном канале
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
