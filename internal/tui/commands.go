package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/tarifa/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// fetch runs a page-affecting controller action off the UI goroutine.
func (m Model) fetch(action func(ctx context.Context) error) tea.Cmd {
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return pageLoadedMsg{err: action(ctx)}
	}
}

// loadPage fetches the page described by the current query state.
func (m Model) loadPage() tea.Cmd {
	return m.fetch(m.ctrl.FetchPage)
}

// loadMetadata fetches filter options and stats.
func (m Model) loadMetadata() tea.Cmd {
	timeout := m.config.Timeout
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return metadataLoadedMsg{meta: ctrl.LoadInitialMetadata(ctx)}
	}
}

func (m Model) applyFilter(criteria model.FilterCriteria) tea.Cmd {
	ctrl := m.ctrl
	return m.fetch(func(ctx context.Context) error {
		return ctrl.ApplyFilter(ctx, criteria)
	})
}

func (m Model) toggleSort(column model.SortColumn) tea.Cmd {
	ctrl := m.ctrl
	return m.fetch(func(ctx context.Context) error {
		return ctrl.ToggleSort(ctx, column)
	})
}

// export writes the CSV export of the current view to a new file.
func (m Model) export() tea.Cmd {
	timeout := m.config.Timeout
	dir := m.config.ExportDir
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		path := filepath.Join(dir, fmt.Sprintf("tarifarios_%s.csv", time.Now().Format("20060102_150405")))
		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{err: fmt.Errorf("failed to create export file: %w", err)}
		}

		n, err := ctrl.Export(ctx, f)
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to write export file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path, bytes: n}
	}
}
