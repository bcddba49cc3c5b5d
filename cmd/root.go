package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	baseURL    string
	fps        int
	logFile    string
}

// NewRootCmd builds the reel command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "reel [image...]",
		Short: "Play sprite-sheet animations in the terminal",
		Long: `reel downloads sprite sheets (5x5 grids of frames), slices them and
plays the frames back at a fixed rate.

Run without a subcommand to open the player. Images default to the list in
the config file and are resolved against --base-url.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/reel/config.yml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&opts.baseURL, "base-url", "", "base URL for relative image references")
	pf.IntVar(&opts.fps, "fps", 0, "frames per second (overrides config)")
	pf.StringVar(&opts.logFile, "log-file", "", "write player logs to this file")

	rootCmd.AddCommand(
		newPlayCmd(opts),
		newFetchCmd(opts),
		newStreamCmd(opts),
	)
	return rootCmd
}

func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
