package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/JPM1118/reel/internal/config"
	"github.com/JPM1118/reel/internal/logger"
	"github.com/JPM1118/reel/internal/sheet"
	"github.com/JPM1118/reel/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newFetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [image...]",
		Short: "Download and slice sprite sheets without playing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			refs := imageRefs(cfg, args)
			if len(refs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No images configured.")
				return nil
			}

			log := logger.NewWriter(cmd.ErrOrStderr(), opts.verbose)
			dl := sheet.NewDownloader(newFetcher(cfg), cfg.Player.FrameWidth, cfg.Player.FrameHeight, log)
			bar := ui.NewProgressBar(cmd.ErrOrStderr(), len(refs), "Downloading sheets")
			dl.Progress = ui.ProgressFunc(bar)

			sliced := make(map[string]*sheet.Sheet, len(refs))
			res, err := dl.Download(cmd.Context(), refs, func(s *sheet.Sheet, _ []sheet.Frame) {
				sliced[s.URL] = s
			})
			if err != nil {
				return fmt.Errorf("fetch: %w", err)
			}
			defer func() {
				for _, s := range res.Sheets {
					s.Release()
				}
			}()

			return printSummary(cmd, cfg, refs, sliced, res)
		},
	}
}

func printSummary(cmd *cobra.Command, cfg config.Config, refs []string, sliced map[string]*sheet.Sheet, res sheet.Result) error {
	ok := color.New(color.FgGreen).SprintFunc()
	failed := color.New(color.FgRed).SprintFunc()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IMAGE\tSTATUS\tSIZE\tFRAMES")
	fmt.Fprintln(w, "─────\t──────\t────\t──────")
	for _, ref := range refs {
		s, found := sliced[ref]
		if !found {
			fmt.Fprintf(w, "%s\t%s\t-\t0\n", ref, failed("failed"))
			continue
		}
		b := s.Image().Bounds()
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\n", ref, ok("ok"), b.Dx(), b.Dy(), sheet.FramesPerSheet)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d frames of %dx%d from %d/%d sheets in %s\n",
		len(res.Frames), cfg.Player.FrameWidth, cfg.Player.FrameHeight,
		len(res.Sheets), res.Attempted, res.Elapsed.Round(time.Millisecond))
	return nil
}
