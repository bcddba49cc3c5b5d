package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JPM1118/reel/internal/config"
	"github.com/JPM1118/reel/internal/logger"
	"github.com/JPM1118/reel/internal/player"
	"github.com/JPM1118/reel/internal/stream"
	"github.com/spf13/cobra"
)

func newStreamCmd(opts *options) *cobra.Command {
	var loop bool

	cmd := &cobra.Command{
		Use:   "stream [image...]",
		Short: "Play frames onto an MQTT LED matrix",
		Long: `stream plays the sequence headless, publishing every frame to an LED
matrix over MQTT and every player event as JSON. It exits at the end of the
sequence unless --loop is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log := logger.NewWriter(cmd.ErrOrStderr(), opts.verbose)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := stream.Connect(ctx, cfg.Stream, log)
			if err != nil {
				return err
			}
			defer client.Disconnect(250)

			return runStream(ctx, cfg, client, imageRefs(cfg, args), loop, log)
		},
	}

	cmd.Flags().BoolVar(&loop, "loop", false, "restart at the end instead of exiting")
	return cmd
}

// runStream plays refs onto pub until the sequence ends, or ctx is
// cancelled. With loop set only cancellation stops it.
func runStream(ctx context.Context, cfg config.Config, pub stream.Publisher, refs []string, loop bool, log *slog.Logger) error {
	canvas, err := stream.NewCanvas(pub, stream.Options{
		FrameTopic:  cfg.Stream.FrameTopic,
		EventsTopic: cfg.Stream.EventsTopic,
		Width:       cfg.Stream.Width,
		Height:      cfg.Stream.Height,
		QoS:         byte(cfg.Stream.QoS),
		Logger:      log,
	})
	if err != nil {
		return err
	}

	p := player.New(newFetcher(cfg), refs, canvas, playerOptions(cfg, log))
	defer p.Close()
	canvas.Attach(p)

	ended := make(chan struct{}, 1)
	p.OnEnd(func() {
		if loop {
			p.Resume()
			return
		}
		select {
		case ended <- struct{}{}:
		default:
		}
	})

	if err := p.Play(ctx); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	st := p.State()
	if !st.Loaded {
		return fmt.Errorf("stream: no frames loaded from %d images", len(refs))
	}
	log.Info("streaming", "frames", st.Total, "topic", cfg.Stream.FrameTopic, "loop", loop)

	select {
	case <-ctx.Done():
		log.Info("stream stopped", "frame", p.State().Current)
	case <-ended:
		log.Info("sequence ended", "sent", canvas.Sent())
	}
	return nil
}
