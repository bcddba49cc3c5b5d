package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/JPM1118/reel/internal/config"
	"github.com/JPM1118/reel/internal/logger"
	"github.com/JPM1118/reel/internal/player"
	"github.com/JPM1118/reel/internal/sheet"
)

// loadConfig reads the config file and applies flag overrides.
func (o *options) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if o.baseURL != "" {
		cfg.Player.BaseURL = o.baseURL
	}
	if o.fps > 0 {
		cfg.Player.FPS = o.fps
		if cfg.Player.RefreshRate < o.fps {
			cfg.Player.RefreshRate = o.fps
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// openLog returns a logger writing to --log-file, or discarding when the
// flag is unset. The returned closer is never nil.
func (o *options) openLog() (*slog.Logger, io.Closer, error) {
	if o.logFile == "" {
		return logger.Discard(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.NewWriter(f, o.verbose), f, nil
}

// imageRefs returns args when given, else the configured image list.
func imageRefs(cfg config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Player.Images
}

func newFetcher(cfg config.Config) *sheet.HTTPFetcher {
	return &sheet.HTTPFetcher{
		Client:  &http.Client{Timeout: cfg.Download.Timeout.Duration},
		BaseURL: cfg.Player.BaseURL,
	}
}

func playerOptions(cfg config.Config, log *slog.Logger) player.Options {
	return player.Options{
		FPS:           cfg.Player.FPS,
		RefreshRate:   cfg.Player.RefreshRate,
		FrameWidth:    cfg.Player.FrameWidth,
		FrameHeight:   cfg.Player.FrameHeight,
		PlayLastFrame: cfg.Player.PlayLastFrame,
		Logger:        log,
	}
}
