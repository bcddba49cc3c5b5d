package ui

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar creates a progress bar for sheet downloads.
//
// Example:
//
//	bar := ui.NewProgressBar(os.Stderr, len(refs), "Downloading sheets")
//	dl.Progress = ui.ProgressFunc(bar)
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(15),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// ProgressFunc adapts bar to the downloader's progress callback.
func ProgressFunc(bar *progressbar.ProgressBar) func(done, total int) {
	return func(done, total int) {
		if bar == nil {
			return
		}
		bar.Set(done)
	}
}
