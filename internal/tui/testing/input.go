// Package testing drives bubbletea models in tests without a terminal.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyPress creates a key press message for the given runes.
func KeyPress(key string) tea.KeyMsg {
	return tea.KeyMsg{
		Type:  tea.KeyRunes,
		Runes: []rune(key),
	}
}

// Key creates a message for a special key such as tea.KeyEnter.
func Key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// WindowSize creates a window size message for testing responsive layouts.
func WindowSize(width, height int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{
		Width:  width,
		Height: height,
	}
}

// Type sends text to model one rune at a time and discards the commands.
func Type(model tea.Model, text string) tea.Model {
	for _, r := range text {
		model, _ = model.Update(KeyPress(string(r)))
	}
	return model
}

// Run executes cmd synchronously and feeds the messages it produces back
// into model. Batches are expanded; follow-up commands are not executed, so
// timers such as cursor blinks never block a test.
func Run(model tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return model
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			model = Run(model, c)
		}
		return model
	}
	model, _ = model.Update(msg)
	return model
}
