// Package tui renders an interactive status table for the managed
// services backed by tview.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/quantlab/quantctl/internal/supervisor"
)

const (
	tableTitle             = "Services"
	defaultRefreshInterval = time.Second
)

// Option configures UI behaviour.
type Option func(*UI)

// WithRefreshInterval sets how often the status table is refreshed.
func WithRefreshInterval(d time.Duration) Option {
	return func(u *UI) {
		if d > 0 {
			u.interval = d
		}
	}
}

// UI coordinates the interactive status interface.
type UI struct {
	app      *tview.Application
	table    *tview.Table
	sup      *supervisor.Supervisor
	interval time.Duration
	actions  map[rune]func(name string) error
}

// New constructs a UI over the supervisor.
func New(sup *supervisor.Supervisor, opts ...Option) *UI {
	app := tview.NewApplication()
	table := tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	table.SetBorder(true).SetTitle(tableTitle)

	ui := &UI{
		app:      app,
		table:    table,
		sup:      sup,
		interval: defaultRefreshInterval,
	}
	ui.actions = map[rune]func(string) error{
		's': ui.startService,
		'x': ui.stopService,
		'r': ui.restartService,
	}
	for _, opt := range opts {
		opt(ui)
	}

	app.SetInputCapture(ui.handleKey)
	app.SetRoot(table, true)
	return ui
}

// handleKey dispatches the lifecycle shortcuts; consumed events return
// nil, everything else passes through to tview.
func (u *UI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Rune() == 'q' {
		u.app.Stop()
		return nil
	}
	action, ok := u.actions[event.Rune()]
	if !ok {
		return event
	}
	u.runAction(action)
	return nil
}

func (u *UI) startService(name string) error {
	_, err := u.sup.Start(name)
	return err
}

func (u *UI) stopService(name string) error {
	_, err := u.sup.Stop(name)
	return err
}

func (u *UI) restartService(name string) error {
	if _, err := u.sup.Stop(name); err != nil {
		return err
	}
	_, err := u.sup.Start(name)
	return err
}

// Run displays the interface until the context is cancelled or the user
// quits.
func (u *UI) Run(ctx context.Context) error {
	u.render()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				u.app.Stop()
				return
			case <-ticker.C:
				u.refresh()
			}
		}
	}()

	return u.app.Run()
}

func (u *UI) refresh() {
	u.app.QueueUpdateDraw(u.render)
}

func (u *UI) render() {
	row, _ := u.table.GetSelection()

	u.table.Clear()
	for col, header := range []string{"SERVICE", "STATE", "PID", "UPTIME"} {
		cell := tview.NewTableCell(header).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false)
		u.table.SetCell(0, col, cell)
	}

	for i, name := range u.sup.Names() {
		status, err := u.sup.Status(name)
		state := "Stopped"
		pid := "-"
		uptime := "-"
		color := tcell.ColorRed
		if err == nil && status.Running {
			state = "Running"
			pid = fmt.Sprintf("%d", status.PID)
			if !status.StartedAt.IsZero() {
				uptime = time.Since(status.StartedAt).Truncate(time.Second).String()
			}
			color = tcell.ColorGreen
		}

		u.table.SetCell(i+1, 0, tview.NewTableCell(name))
		u.table.SetCell(i+1, 1, tview.NewTableCell(state).SetTextColor(color))
		u.table.SetCell(i+1, 2, tview.NewTableCell(pid))
		u.table.SetCell(i+1, 3, tview.NewTableCell(uptime))
	}

	if row > 0 && row <= len(u.sup.Names()) {
		u.table.Select(row, 0)
	} else {
		u.table.Select(1, 0)
	}
}

// runAction applies a lifecycle operation to the selected service off the
// UI goroutine, then redraws.
func (u *UI) runAction(action func(name string) error) {
	name := u.selectedService()
	if name == "" {
		return
	}
	go func() {
		_ = action(name)
		u.refresh()
	}()
}

func (u *UI) selectedService() string {
	row, _ := u.table.GetSelection()
	if row < 1 {
		return ""
	}
	cell := u.table.GetCell(row, 0)
	if cell == nil {
		return ""
	}
	return cell.Text
}
