package main

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/greenmon/pkg/store"
)

// historyLimit is the number of stored samples shown in the history dialog.
const historyLimit = 50

// showHistoryDialog lists the most recently stored samples.
func showHistoryDialog(state *appState) {
	if state.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	total, err := state.store.Count(ctx)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to count samples: %w", err), state.window)
		return
	}
	samples, err := state.store.Recent(ctx, historyLimit)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to load samples: %w", err), state.window)
		return
	}

	list := widget.NewList(
		func() int { return len(samples) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(historyLine(samples[id], state.store.Session()))
		},
	)

	title := fmt.Sprintf("Stored samples (%d of %d)", len(samples), total)
	d := dialog.NewCustom(title, "Close", list, state.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

// historyLine formats a sample; samples from earlier runs are marked.
func historyLine(s store.Sample, current fmt.Stringer) string {
	marker := " "
	if s.Session.String() != current.String() {
		marker = "*"
	}
	return fmt.Sprintf("%s %s  %s", marker, s.ReceivedAt.Format("2006-01-02 15:04:05"), s.Record)
}
