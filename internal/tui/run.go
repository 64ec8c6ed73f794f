package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/tarifa/internal/controller"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive browser over ctrl and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *controller.Controller, opts ...Option) error {
	if ctrl == nil {
		return fmt.Errorf("controller is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	if cfg.MouseSupport {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(newModel(ctrl, cfg), programOpts...)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
