// Package cli implements the paperlens command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"paperlens/internal/app"
	"paperlens/internal/config"
	"paperlens/internal/logging"
)

// state carries the flags shared by every command. The application is built
// on first use and released when the command returns.
type state struct {
	configPath string
	verbose    bool
}

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:   "paperlens",
		Short: "Local semantic library for papers and images",
		Long: `paperlens indexes PDF papers and images on the local disk and answers
natural-language queries against them. Papers can be filed into topic
directories by keyword.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", "", "config file (default ./config.yaml or ~/.config/paperlens/config.yaml)")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "log progress at debug level")

	root.AddCommand(
		newAddPaperCmd(st),
		newSearchPaperCmd(st),
		newOrganizePapersCmd(st),
		newListPapersCmd(st),
		newAddImageCmd(st),
		newSearchImageCmd(st),
		newIndexImagesCmd(st),
		newProcessImagesCmd(st),
		newBrowseCmd(st),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (s *state) loadConfig() (*config.AppConfig, error) {
	if s.configPath != "" {
		return config.Load(s.configPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// withApp builds the application, runs fn and closes everything it opened.
func (s *state) withApp(cmd *cobra.Command, fn func(*app.App) error) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Log.Level
	if s.verbose {
		level = "debug"
	}
	logger, closeLog := logging.New(level, cfg.Log.File, cmd.ErrOrStderr())
	defer closeLog()

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
