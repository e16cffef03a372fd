package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/asstex/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Reprint the slot table whenever the file changes",
		Long: `Load the file, print its table and reload it every time it changes on
disk. A change that fails to parse is reported and the last good table
is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, err := a.openSession(path)
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			renderTable(out, s.model)

			w, err := watch.New(path, watch.DefaultDebounce, a.log)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = w.Run(ctx, func() error {
				if err := s.open(path); err != nil {
					a.log.Warn("reload failed, keeping previous document", zap.Error(err))
					fmt.Fprintf(out, "%s %v\n", styleWarning.Render("Reload failed:"), err)
					return nil
				}
				fmt.Fprintln(out)
				renderTable(out, s.model)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
