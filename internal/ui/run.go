package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"wirecheck/internal/driver"
)

// Progress drives a progress view from driver events. Feed is safe to pass
// as driver.Options.Progress.
type Progress struct {
	events chan driver.Event
	done   chan error
}

// StartProgress starts the view on out; call Stop after the run.
func StartProgress(out io.Writer, title string, defs []string) *Progress {
	p := &Progress{
		// буфер на все события запуска, чтобы воркеры не ждали отрисовку
		events: make(chan driver.Event, 3*len(defs)+1),
		done:   make(chan error, 1),
	}
	prog := tea.NewProgram(NewProgressModel(title, defs, p.events), tea.WithOutput(out), tea.WithInput(nil))
	go func() {
		_, err := prog.Run()
		p.done <- err
	}()
	return p
}

// Feed forwards a driver event to the view.
func (p *Progress) Feed(ev driver.Event) {
	p.events <- ev
}

// Stop closes the event stream and waits for the view to finish.
func (p *Progress) Stop() error {
	close(p.events)
	return <-p.done
}
