package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"moltree/internal/driver"
)

// Run executes work in a goroutine while a progress view renders its
// events to out. It returns work's error unless the view itself failed.
func Run(title string, files []string, out io.Writer, work func(sink driver.ProgressSink) error) error {
	events := make(chan driver.Event, 256)
	outcome := make(chan error, 1)

	go func() {
		err := work(driver.ChannelSink{Ch: events})
		close(events)
		outcome <- err
	}()

	model := NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// дочитываем события, если вид закрылся раньше: воркеры не должны
	// зависнуть на полном канале
	for range events {
	}
	err := <-outcome
	if uiErr != nil {
		return uiErr
	}
	return err
}
