package sheet

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// ProgressFunc reports download progress: (1, 7), (2, 7), ...
type ProgressFunc func(done, total int)

// Result summarizes one download pass.
type Result struct {
	Sheets    []*Sheet
	Frames    []Frame
	Attempted int
	Failed    int
	Elapsed   time.Duration
}

// Downloader fetches sheets one at a time and slices them into frames.
type Downloader struct {
	fetcher     Fetcher
	frameWidth  int
	frameHeight int
	log         *slog.Logger

	// Progress is called after every attempted fetch. Optional.
	Progress ProgressFunc
}

// NewDownloader creates a downloader producing w x h frames.
func NewDownloader(fetcher Fetcher, w, h int, log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Downloader{
		fetcher:     fetcher,
		frameWidth:  w,
		frameHeight: h,
		log:         log,
	}
}

// Download fetches refs in order. Fetch i+1 starts only after fetch i
// returns. Failed fetches are skipped and contribute no frames. onSheet,
// when non-nil, receives each sheet and its frames as they are sliced.
// The only error returned is ctx's, in which case the partial result is
// still returned.
func (d *Downloader) Download(ctx context.Context, refs []string, onSheet func(*Sheet, []Frame)) (Result, error) {
	start := time.Now()
	var res Result

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			res.Elapsed = time.Since(start)
			return res, err
		}

		res.Attempted++
		s, err := d.fetcher.Fetch(ctx, ref)
		if err != nil {
			res.Failed++
			d.log.Debug("sheet skipped", "ref", ref, "err", err)
		} else {
			frames := Slice(s, d.frameWidth, d.frameHeight)
			res.Sheets = append(res.Sheets, s)
			res.Frames = append(res.Frames, frames...)
			d.log.Debug("sheet sliced", "ref", ref, "frames", len(frames))
			if onSheet != nil {
				onSheet(s, frames)
			}
		}

		if d.Progress != nil {
			d.Progress(i+1, len(refs))
		}
	}

	res.Elapsed = time.Since(start)
	d.log.Info("download complete",
		"sheets", len(res.Sheets), "failed", res.Failed,
		"frames", len(res.Frames), "elapsed", res.Elapsed)
	return res, nil
}
