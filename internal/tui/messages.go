package tui

import "github.com/Veraticus/tarifa/internal/controller"

// pageLoadedMsg reports the outcome of a controller action that fetched a page.
type pageLoadedMsg struct {
	err error
}

// metadataLoadedMsg carries filter options and stats.
type metadataLoadedMsg struct {
	meta controller.Metadata
}

// exportDoneMsg reports a finished CSV export.
type exportDoneMsg struct {
	err   error
	path  string
	bytes int64
}
