package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/asstex/internal/config"
	"github.com/Faultbox/asstex/internal/logger"
)

func newRootCmd() *cobra.Command {
	app := &app{}

	root := &cobra.Command{
		Use:   "asstool",
		Short: "Edit texture association (ASS) files",
		Long: `asstool reads, edits and writes ASS files: text files that map texture
slot names to texture paths, one "slot=path" record per line.

Every editing command loads the file, applies the change through the
table model and saves atomically. Nothing is written when a change is
rejected.`,
		SilenceUsage:      true,
		PersistentPreRunE: app.initialize,
		PersistentPostRun: func(*cobra.Command, []string) { logger.Sync() },
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		app.showCmd(),
		app.getCmd(),
		app.setCmd(),
		app.addCmd(),
		app.removeCmd(),
		app.renameCmd(),
		app.newCmd(),
		app.saveAsCmd(),
		app.fmtCmd(),
		app.exportCmd(),
		app.importCmd(),
		app.checkCmd(),
		app.watchCmd(),
	)
	return root
}

// app carries state shared by all subcommands once flags are parsed.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func (a *app) initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	a.cfg = cfg
	a.log = logger.Named("asstool")
	a.log.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("encoding", cfg.Document.Encoding),
		zap.Strings("texture_roots", cfg.Textures.Roots),
	)
	return nil
}
