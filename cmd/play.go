package cmd

import (
	"context"
	"fmt"

	"github.com/JPM1118/reel/internal/notify"
	"github.com/JPM1118/reel/internal/player"
	"github.com/JPM1118/reel/internal/render"
	"github.com/JPM1118/reel/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newPlayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play [image...]",
		Short: "Open the interactive player",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts, args)
		},
	}
}

func runPlay(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	log, logCloser, err := opts.openLog()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	raster := render.NewRaster(0, 0)
	p := player.New(newFetcher(cfg), imageRefs(cfg, args), raster, playerOptions(cfg, log))
	defer p.Close()

	var bell *notify.Bell
	if cfg.Notifications.TerminalBell {
		bell = notify.NewBell(cfg.Notifications.BellDebounce.Duration, cfg.Notifications.BellOnEvents)
	}
	bar := notify.NewBar(20)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := tui.NewScreen(p, raster,
		tui.WithBell(bell),
		tui.WithNotifyBar(bar),
		tui.WithRefresh(cfg.Player.RefreshInterval()),
		tui.WithContext(ctx),
	)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	finalModel, err := program.Run()
	cancel() // Stop any download in flight
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}

	if m, ok := finalModel.(tui.Screen); ok && m.Err() != "" {
		log.Warn("player exited with error", "error", m.Err())
	}
	return nil
}
