package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cohere/internal/driver"
	"cohere/internal/source"
	"cohere/internal/ui"
)

type checkOutcome struct {
	fileSet *source.FileSet
	results []driver.UnitResult
	err     error
}

// runCheckDirWithUI runs driver.CheckDir in the background while the
// progress view consumes its events. The view quits once the run ends.
func runCheckDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options) (*source.FileSet, []driver.UnitResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fileSet, results, err := driver.CheckDir(ctx, dir, optsCopy)
		outcomeCh <- checkOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// вывод прерван: дочитываем события, чтобы проверка не встала на записи в канал
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
